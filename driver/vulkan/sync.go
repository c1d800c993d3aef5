// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/present/driver"
)

type semaphore struct {
	dev vk.Device
	sem vk.Semaphore
}

var _ driver.Semaphore = (*semaphore)(nil)

func (s *semaphore) Destroy() {
	vk.DestroySemaphore(s.dev, s.sem, nil)
}

type fence struct {
	dev   vk.Device
	fence vk.Fence
}

var _ driver.Fence = (*fence)(nil)

func (f *fence) Wait(timeout time.Duration) driver.Result {
	return mapResult(vk.WaitForFences(f.dev, 1, []vk.Fence{f.fence}, vk.True, timeoutNs(timeout)))
}

func (f *fence) Resolved() bool {
	return vk.WaitForFences(f.dev, 1, []vk.Fence{f.fence}, vk.True, 0) == vk.Success
}

func (f *fence) Reset() error {
	if res := vk.ResetFences(f.dev, 1, []vk.Fence{f.fence}); res != vk.Success {
		return fmt.Errorf("vulkan: reset fence: %s", mapResult(res))
	}
	return nil
}

func (f *fence) Destroy() {
	vk.DestroyFence(f.dev, f.fence, nil)
}

// timeoutNs converts a driver timeout into the nanosecond form Vulkan
// expects. A negative duration waits forever.
func timeoutNs(timeout time.Duration) uint64 {
	if timeout < 0 {
		return vk.MaxUint64
	}
	return uint64(timeout.Nanoseconds())
}
