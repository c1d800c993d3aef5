// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package swapchain owns the presentable image pool and its per-image
// framebuffers.
//
// A ResourceSet bundles one driver swapchain, the fixed clear-then-store
// render pass it renders through, and one framebuffer per image, all sharing
// a single format and extent. Resource sets are immutable once built: resize
// or staleness is handled by building a whole new set (Build) and destroying
// the old one only after its in-flight frames have resolved.
//
// Configuration is selected from a fresh capability snapshot on every build:
// at least two images (clamped to the surface's bounds), the first supported
// format unless the previous set's format is still supported, the FIFO
// present mode, and the surface-reported extent when the platform provides
// one. A failed build leaves the previous set fully usable.
package swapchain
