// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webgpu

import (
	"sync"
	"time"

	"github.com/gogpu/present/driver"
)

// semaphore is an inert ordering token. WebGPU serializes queue work on
// its own, so there is nothing to signal or wait for.
type semaphore struct{}

var _ driver.Semaphore = (*semaphore)(nil)

func (s *semaphore) Destroy() {}

// fence is a host-side latch. It resolves when the submission carrying it
// is queued, which is as much completion as WebGPU exposes.
type fence struct {
	mu       sync.Mutex
	resolved bool
	done     chan struct{}
}

var _ driver.Fence = (*fence)(nil)

func newFence(signaled bool) *fence {
	f := &fence{done: make(chan struct{})}
	if signaled {
		f.resolved = true
		close(f.done)
	}
	return f
}

func (f *fence) signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.resolved {
		f.resolved = true
		close(f.done)
	}
}

func (f *fence) Wait(timeout time.Duration) driver.Result {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if timeout < 0 {
		<-done
		return driver.Success
	}
	select {
	case <-done:
		return driver.Success
	default:
	}
	if timeout == 0 {
		return driver.Timeout
	}
	select {
	case <-done:
		return driver.Success
	case <-time.After(timeout):
		return driver.Timeout
	}
}

func (f *fence) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

func (f *fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		f.resolved = false
		f.done = make(chan struct{})
	}
	return nil
}

func (f *fence) Destroy() {}
