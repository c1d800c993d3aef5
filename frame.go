// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

// FrameResult reports what one RunFrame call did with its frame.
type FrameResult uint8

const (
	// FramePresented means the frame was submitted and queued for display.
	FramePresented FrameResult = iota

	// FrameSkippedRebuild means the surface went stale; the frame was
	// dropped and the next RunFrame starts by rebuilding resources.
	FrameSkippedRebuild

	// FrameSkippedTimeout means no image became available within the
	// acquire timeout; the frame was dropped.
	FrameSkippedTimeout

	// FrameSkippedMinimized means the surface has a zero extent; frames
	// are dropped until a non-zero resize arrives.
	FrameSkippedMinimized

	// FrameClosed means a CloseEvent arrived; no frame was produced and
	// the caller should stop the loop.
	FrameClosed
)

// Presented reports whether the frame was queued for display.
func (r FrameResult) Presented() bool { return r == FramePresented }

// String implements fmt.Stringer.
func (r FrameResult) String() string {
	switch r {
	case FramePresented:
		return "presented"
	case FrameSkippedRebuild:
		return "skipped (rebuild)"
	case FrameSkippedTimeout:
		return "skipped (timeout)"
	case FrameSkippedMinimized:
		return "skipped (minimized)"
	case FrameClosed:
		return "closed"
	default:
		return "unknown"
	}
}
