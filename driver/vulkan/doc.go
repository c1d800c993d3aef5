// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package vulkan implements the presentation driver on Vulkan through the
// pure-Go goki/vulkan binding.
//
// The backend registers itself as "vulkan" at native priority. Opening it
// requires a driver.Options Source implementing SurfaceSource, which adapts
// the platform window layer: it supplies the loader's
// vkGetInstanceProcAddr, the instance extensions the window system needs,
// and the VkSurfaceKHR itself. The glfw adapter in cmd/presentdemo is the
// reference implementation.
//
// Presentation signals map directly: driver.Semaphore is VkSemaphore,
// driver.Fence is VkFence, and acquire/present results translate
// one-to-one (VK_ERROR_OUT_OF_DATE_KHR to OutOfDate, VK_SUBOPTIMAL_KHR to
// Suboptimal, VK_ERROR_DEVICE_LOST to DeviceLost).
package vulkan
