// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

var (
	bgra = driver.Format{Pixel: gputypes.TextureFormatBGRA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}
	rgba = driver.Format{Pixel: gputypes.TextureFormatRGBA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}
)

func TestChooseFormat(t *testing.T) {
	caps := driver.Capabilities{Formats: []driver.Format{bgra, rgba}}

	t.Run("first supported by default", func(t *testing.T) {
		got, ok := chooseFormat(caps, nil)
		if !ok || got != bgra {
			t.Errorf("chooseFormat() = %v, %v, want %v", got, ok, bgra)
		}
	})

	t.Run("previous format wins for continuity", func(t *testing.T) {
		got, ok := chooseFormat(caps, &rgba)
		if !ok || got != rgba {
			t.Errorf("chooseFormat() = %v, %v, want %v", got, ok, rgba)
		}
	})

	t.Run("unsupported previous falls back to first", func(t *testing.T) {
		gone := driver.Format{Pixel: gputypes.TextureFormatRGBA8Unorm, Space: driver.ColorSpaceLinear}
		got, ok := chooseFormat(caps, &gone)
		if !ok || got != bgra {
			t.Errorf("chooseFormat() = %v, %v, want %v", got, ok, bgra)
		}
	})

	t.Run("no formats", func(t *testing.T) {
		if _, ok := chooseFormat(driver.Capabilities{}, nil); ok {
			t.Error("chooseFormat() ok = true for empty format list")
		}
	})
}

func TestChoosePresentMode(t *testing.T) {
	t.Run("fifo selected", func(t *testing.T) {
		caps := driver.Capabilities{PresentModes: []driver.PresentMode{
			driver.PresentModeMailbox, driver.PresentModeFIFO,
		}}
		got, ok := choosePresentMode(caps)
		if !ok || got != driver.PresentModeFIFO {
			t.Errorf("choosePresentMode() = %v, %v, want FIFO", got, ok)
		}
	})

	t.Run("fifo missing", func(t *testing.T) {
		caps := driver.Capabilities{PresentModes: []driver.PresentMode{driver.PresentModeImmediate}}
		if _, ok := choosePresentMode(caps); ok {
			t.Error("choosePresentMode() ok = true without FIFO")
		}
	})
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{"floor of two", 1, 0, 2},
		{"surface minimum above floor", 3, 0, 3},
		{"clamped to maximum", 3, 2, 2},
		{"unbounded maximum", 2, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := driver.Capabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			if got := chooseImageCount(caps); got != tt.want {
				t.Errorf("chooseImageCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChooseExtent(t *testing.T) {
	t.Run("surface-reported extent wins", func(t *testing.T) {
		caps := driver.Capabilities{
			CurrentExtent:    driver.Extent{Width: 1024, Height: 768},
			HasCurrentExtent: true,
		}
		got := chooseExtent(caps, driver.Extent{Width: 1, Height: 1})
		if got != caps.CurrentExtent {
			t.Errorf("chooseExtent() = %v, want %v", got, caps.CurrentExtent)
		}
	})

	t.Run("desired clamped to bounds", func(t *testing.T) {
		caps := driver.Capabilities{
			MinImageExtent: driver.Extent{Width: 100, Height: 100},
			MaxImageExtent: driver.Extent{Width: 2000, Height: 2000},
		}
		got := chooseExtent(caps, driver.Extent{Width: 5000, Height: 50})
		want := driver.Extent{Width: 2000, Height: 100}
		if got != want {
			t.Errorf("chooseExtent() = %v, want %v", got, want)
		}
	})
}
