// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

// mapResult translates a Vulkan result into the driver taxonomy. Unknown
// failure codes count as device loss: the caller cannot recover from a
// condition it cannot classify.
func mapResult(res vk.Result) driver.Result {
	switch res {
	case vk.Success:
		return driver.Success
	case vk.Suboptimal:
		return driver.Suboptimal
	case vk.ErrorOutOfDate:
		return driver.OutOfDate
	case vk.Timeout:
		return driver.Timeout
	case vk.NotReady:
		return driver.NotReady
	case vk.ErrorSurfaceLost:
		return driver.SurfaceLost
	default:
		return driver.DeviceLost
	}
}

// toDriverFormat maps a Vulkan surface format into the portable format
// space. Formats without a portable equivalent are filtered out of the
// capability snapshot.
func toDriverFormat(sf vk.SurfaceFormat) (driver.Format, bool) {
	if sf.ColorSpace != vk.ColorSpaceSrgbNonlinear {
		return driver.Format{}, false
	}
	switch sf.Format {
	case vk.FormatB8g8r8a8Unorm:
		return driver.Format{Pixel: gputypes.TextureFormatBGRA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}, true
	case vk.FormatR8g8b8a8Unorm:
		return driver.Format{Pixel: gputypes.TextureFormatRGBA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}, true
	default:
		return driver.Format{}, false
	}
}

// toVkFormat is the inverse of toDriverFormat for swapchain creation.
func toVkFormat(f driver.Format) vk.Format {
	switch f.Pixel {
	case gputypes.TextureFormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case gputypes.TextureFormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	default:
		return vk.FormatUndefined
	}
}

func toDriverPresentMode(m vk.PresentMode) (driver.PresentMode, bool) {
	switch m {
	case vk.PresentModeFifo:
		return driver.PresentModeFIFO, true
	case vk.PresentModeMailbox:
		return driver.PresentModeMailbox, true
	case vk.PresentModeImmediate:
		return driver.PresentModeImmediate, true
	default:
		return 0, false
	}
}

func toVkPresentMode(m driver.PresentMode) vk.PresentMode {
	switch m {
	case driver.PresentModeMailbox:
		return vk.PresentModeMailbox
	case driver.PresentModeImmediate:
		return vk.PresentModeImmediate
	default:
		return vk.PresentModeFifo
	}
}
