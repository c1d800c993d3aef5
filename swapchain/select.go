// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import "github.com/gogpu/present/driver"

// minImages is the floor for the image pool: double buffering is the whole
// point of a presentation queue.
const minImages = 2

// chooseFormat picks the surface format for a new set. The previous set's
// format wins when still supported so a resize never changes pixel
// interpretation mid-session; otherwise the surface's first (most
// preferred) format is used.
func chooseFormat(caps driver.Capabilities, prev *driver.Format) (driver.Format, bool) {
	if len(caps.Formats) == 0 {
		return driver.Format{}, false
	}
	if prev != nil {
		for _, f := range caps.Formats {
			if f == *prev {
				return f, true
			}
		}
	}
	return caps.Formats[0], true
}

// choosePresentMode returns the FIFO mode: vsync-bound and tear-free, and
// the only mode every conforming surface must support.
func choosePresentMode(caps driver.Capabilities) (driver.PresentMode, bool) {
	for _, m := range caps.PresentModes {
		if m == driver.PresentModeFIFO {
			return m, true
		}
	}
	return 0, false
}

// chooseImageCount clamps the pool size: at least the surface minimum and
// never below two, capped by the surface maximum when one is reported.
func chooseImageCount(caps driver.Capabilities) uint32 {
	count := caps.MinImageCount
	if count < minImages {
		count = minImages
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// chooseExtent resolves the set's extent: the surface-reported size when
// the platform provides one, otherwise the desired size clamped to the
// surface bounds.
func chooseExtent(caps driver.Capabilities, desired driver.Extent) driver.Extent {
	if caps.HasCurrentExtent {
		return caps.CurrentExtent
	}
	return driver.Extent{
		Width:  clamp(desired.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(desired.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
