// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import "fmt"

// Result classifies the outcome of acquisition, presentation and fence
// waits. It separates routine recoverable conditions from fatal ones so
// callers never have to string-match backend errors.
type Result uint8

const (
	// Success means the operation completed normally.
	Success Result = iota

	// Suboptimal means the operation succeeded but the swapchain no
	// longer matches the surface exactly; callers should rebuild soon.
	Suboptimal

	// OutOfDate means the swapchain is stale and can no longer present;
	// the caller must rebuild it and retry. Expected during resize.
	OutOfDate

	// Timeout means the operation did not complete within the caller's
	// timeout. The frame is skipped; no state was changed.
	Timeout

	// NotReady means a zero-timeout poll found no image available.
	NotReady

	// SurfaceLost means the OS surface itself is gone. Fatal.
	SurfaceLost

	// DeviceLost means the device is unrecoverable. Fatal.
	DeviceLost
)

// String returns the result name for logs and error messages.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Suboptimal:
		return "suboptimal"
	case OutOfDate:
		return "out-of-date"
	case Timeout:
		return "timeout"
	case NotReady:
		return "not-ready"
	case SurfaceLost:
		return "surface-lost"
	case DeviceLost:
		return "device-lost"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// Acquired reports whether an Acquire call with this result produced a
// usable image index. Suboptimal still delivers an image.
func (r Result) Acquired() bool {
	return r == Success || r == Suboptimal
}

// Stale reports whether the result means the swapchain must be rebuilt.
func (r Result) Stale() bool {
	return r == OutOfDate || r == Suboptimal
}

// TimedOut reports whether the result is a bounded-wait expiry.
func (r Result) TimedOut() bool {
	return r == Timeout || r == NotReady
}

// Fatal reports whether the result is unrecoverable for this device.
func (r Result) Fatal() bool {
	return r == SurfaceLost || r == DeviceLost
}

// Err converts a fatal result into an error, and any non-fatal result into
// nil. Backends use it to surface DeviceLost/SurfaceLost as Go errors at
// the boundaries where only errors are returned.
func (r Result) Err() error {
	switch r {
	case SurfaceLost:
		return fmt.Errorf("%w: %s", ErrDeviceLost, r)
	case DeviceLost:
		return ErrDeviceLost
	default:
		return nil
	}
}
