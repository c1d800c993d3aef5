// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"sync"

	"github.com/gogpu/present/driver"
)

// controller coalesces resize and invalidation notices into at most one
// pending rebuild. Many notices between frames collapse to one rebuild at
// the most recent extent; the mutex lets window callbacks post from any
// goroutine while the frame loop drains from its own.
type controller struct {
	mu      sync.Mutex
	pending bool
	extent  driver.Extent // latest requested extent; zero means ask the surface
}

// onResize records a new surface size. The last extent before the next
// drain wins.
func (c *controller) onResize(e driver.Extent) {
	c.mu.Lock()
	c.pending = true
	c.extent = e
	c.mu.Unlock()
}

// onInvalidated flags the current resources as stale without a size change.
func (c *controller) onInvalidated() {
	c.mu.Lock()
	c.pending = true
	c.mu.Unlock()
}

// take claims the pending rebuild, if any, clearing it. The returned extent
// may be zero when only invalidation was posted.
func (c *controller) take() (driver.Extent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return driver.Extent{}, false
	}
	c.pending = false
	e := c.extent
	c.extent = driver.Extent{}
	return e, true
}

// requeue restores a rebuild that could not complete (a minimized surface).
// A resize posted since take wins over the restored extent.
func (c *controller) requeue(e driver.Extent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return
	}
	c.pending = true
	c.extent = e
}
