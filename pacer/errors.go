// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import "errors"

var (
	// ErrNeedsRebuild means the installed resource set no longer matches
	// the surface. Recoverable: rebuild the set, install it, retry the
	// frame.
	ErrNeedsRebuild = errors.New("pacer: presentation resources are stale")

	// ErrAcquireTimeout means no image became available within the
	// caller's deadline. Recoverable: skip the frame and try again.
	ErrAcquireTimeout = errors.New("pacer: image acquisition timed out")

	// ErrNoResources means AcquireNext was called before any resource set
	// was installed.
	ErrNoResources = errors.New("pacer: no resource set installed")

	// ErrFramePending means AcquireNext was called while an earlier
	// acquisition had not yet been presented or discarded. At most one
	// acquisition may be outstanding.
	ErrFramePending = errors.New("pacer: a frame acquisition is already outstanding")

	// ErrClosed means the pacer was shut down.
	ErrClosed = errors.New("pacer: shut down")
)
