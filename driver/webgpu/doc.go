// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package webgpu adapts a WebGPU surface to the presentation driver
// contract. Importing it registers the "webgpu" backend at portability
// priority, below the native Vulkan backend.
//
// WebGPU manages the presentable image pool internally: there is no
// client-visible image array, no semaphores and no fences. The adapter
// maps the contract onto that model. Acquire fetches the surface's
// current texture (a fetch failure reports the surface stale), image
// index 0 always names that texture, semaphores are inert tokens because
// queue ordering is implicit, and a submission's fence resolves as soon
// as the work is queued.
//
// Options.Source must implement SurfaceSource so the backend can build
// its surface and learn the framebuffer size, which WebGPU surfaces do
// not report on their own.
package webgpu
