// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import "errors"

var (
	// ErrDeviceLost is the fatal error class: the device (or its surface)
	// is unrecoverable and the caller must terminate or reinitialize.
	// All fatal backend failures wrap this sentinel.
	ErrDeviceLost = errors.New("driver: device lost")

	// ErrNoBackendAvailable is returned by Open when no registered
	// backend reports itself available on this system.
	ErrNoBackendAvailable = errors.New("driver: no backend available")

	// ErrBackendNotFound is returned by OpenByName for unknown names.
	ErrBackendNotFound = errors.New("driver: backend not found")

	// ErrDeviceClosed is returned when operating on a closed device.
	ErrDeviceClosed = errors.New("driver: device closed")
)
