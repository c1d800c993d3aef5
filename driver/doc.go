// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package driver defines the interfaces a presentation backend must provide.
//
// The present, swapchain, pacer and record packages are written entirely
// against these interfaces, so the same frame-pacing state machine runs on
// top of Vulkan (driver/vulkan), WebGPU (driver/webgpu) or the deterministic
// in-memory backend used by the test suite (driver/sim).
//
// # Handles and ownership
//
// All GPU objects are opaque handles. The package that creates a handle owns
// it and is responsible for calling Destroy; borrowed handles (for example
// the framebuffer passed to record.Record) must not be destroyed by the
// borrower. Handles are not safe for concurrent use unless a backend
// documents otherwise.
//
// # Result codes
//
// Operations that can fail in routine, recoverable ways (image acquisition,
// presentation, fence waits) return a Result instead of an error. Result
// carries the recoverable/fatal classification: OutOfDate and Suboptimal are
// stale-surface conditions that callers handle by rebuilding the swapchain,
// Timeout and NotReady mean the frame should be skipped, and DeviceLost or
// SurfaceLost are fatal. Genuine programmer errors and resource exhaustion
// are reported as Go errors.
//
// # Registering backends
//
// Backends register themselves in an init function:
//
//	func init() {
//	    driver.Register("vulkan", 100, openDevice, vulkanAvailable)
//	}
//
// Applications then open the best available backend with driver.Open, or a
// specific one with driver.OpenByName.
package driver
