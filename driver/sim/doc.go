// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sim is a deterministic in-memory implementation of the driver
// interfaces, used by the test suites of the core packages and available as
// a last-resort registered backend for environments without a GPU.
//
// The simulated device hands out image indices round-robin, tracks semaphore
// signaling so submission-ordering bugs surface as errors instead of silent
// races, and resolves submission fences either immediately or under test
// control (HoldCompletions/ReleaseCompletions). Surface staleness is modeled
// with a generation counter: ResizeSurface bumps the surface generation, and
// any swapchain built against an older generation reports OutOfDate from
// Acquire and Present, exactly like a platform surface that changed size.
//
// Every acquire, record, submit, present and fence resolution is appended to
// a journal that tests inspect to verify ordering invariants.
package sim
