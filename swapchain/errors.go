// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import "errors"

var (
	// ErrUnsupportedConfiguration means the surface offers no format and
	// present-mode combination satisfying the render-pass requirements.
	// Fatal at startup; a surface cannot gain formats later.
	ErrUnsupportedConfiguration = errors.New("swapchain: no supported surface configuration")

	// ErrZeroExtent means the surface currently has a zero dimension
	// (typically a minimized window) and no presentable set can exist.
	// Recoverable: retry after the next non-zero resize.
	ErrZeroExtent = errors.New("swapchain: surface extent is zero")
)
