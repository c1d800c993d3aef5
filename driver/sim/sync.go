// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/gogpu/present/driver"
)

// Semaphore is a simulated GPU-side ordering signal. Unlike real semaphores
// it tracks its signaled state on the host so that ordering violations
// (waiting on a semaphore nothing signaled) become visible to tests.
type Semaphore struct {
	mu       sync.Mutex
	signaled bool
}

var _ driver.Semaphore = (*Semaphore)(nil)

func (s *Semaphore) signal() {
	s.mu.Lock()
	s.signaled = true
	s.mu.Unlock()
}

// consume returns whether the semaphore was signaled, resetting it. Real
// semaphore waits unsignal as a side effect; the simulation mirrors that.
func (s *Semaphore) consume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.signaled
	s.signaled = false
	return was
}

// Signaled reports the current state without consuming it.
func (s *Semaphore) Signaled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaled
}

// Destroy implements driver.Semaphore.
func (s *Semaphore) Destroy() {}

// Fence is a simulated host-waitable completion signal backed by a channel
// so that Wait blocks without polling.
type Fence struct {
	mu             sync.Mutex
	done           chan struct{}
	resolved       bool
	submittedImage uint32 // image index of the submission it tracks
}

var _ driver.Fence = (*Fence)(nil)

func newFence(signaled bool) *Fence {
	f := &Fence{done: make(chan struct{})}
	if signaled {
		f.resolved = true
		close(f.done)
	}
	return f
}

// resolve marks the fence resolved and wakes all waiters.
func (f *Fence) resolve() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	f.resolved = true
	close(f.done)
}

// Wait implements driver.Fence.
func (f *Fence) Wait(timeout time.Duration) driver.Result {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if timeout == driver.NoTimeout {
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

// Resolved implements driver.Fence.
func (f *Fence) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Reset implements driver.Fence.
func (f *Fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.resolved {
		return errors.New("sim: reset of unresolved fence")
	}
	f.resolved = false
	f.done = make(chan struct{})
	return nil
}

// Destroy implements driver.Fence.
func (f *Fence) Destroy() {}
