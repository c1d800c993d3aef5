// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"sync"
	"time"

	"github.com/gogpu/present/driver"
)

// swapchain is the simulated presentable image pool. Image indices are
// handed out in FIFO order: presenting an image makes it acquirable again,
// which yields the strict round-robin order the real FIFO present mode
// converges to.
type swapchain struct {
	dev        *Device
	cfg        driver.SwapchainConfig
	generation uint64

	mu        sync.Mutex
	available []uint32 // indices ready for acquisition, oldest first
	destroyed bool
}

var _ driver.Swapchain = (*swapchain)(nil)

func newSwapchain(dev *Device, cfg driver.SwapchainConfig, generation uint64) *swapchain {
	sc := &swapchain{dev: dev, cfg: cfg, generation: generation}
	for i := uint32(0); i < cfg.ImageCount; i++ {
		sc.available = append(sc.available, i)
	}
	return sc
}

func (sc *swapchain) ImageCount() int       { return int(sc.cfg.ImageCount) }
func (sc *swapchain) Extent() driver.Extent { return sc.cfg.Extent }
func (sc *swapchain) Format() driver.Format { return sc.cfg.Format }

// CreateFramebuffers implements driver.Swapchain.
func (sc *swapchain) CreateFramebuffers(rp driver.RenderPass) ([]driver.Framebuffer, error) {
	fbs := make([]driver.Framebuffer, sc.cfg.ImageCount)
	for i := range fbs {
		fbs[i] = &framebuffer{
			imageIndex: uint32(i),
			extent:     sc.cfg.Extent,
			format:     sc.cfg.Format,
		}
	}
	return fbs, nil
}

// Acquire implements driver.Swapchain.
func (sc *swapchain) Acquire(timeout time.Duration, ready driver.Semaphore) (uint32, driver.Result) {
	result := driver.Success
	sc.dev.mu.Lock()
	if len(sc.dev.scriptedAcquire) > 0 {
		result = sc.dev.scriptedAcquire[0]
		sc.dev.scriptedAcquire = sc.dev.scriptedAcquire[1:]
		if !result.Acquired() {
			sc.dev.log("acquire result=%s (scripted)", result)
			sc.dev.mu.Unlock()
			return 0, result
		}
		// Scripted acquired results (Suboptimal) still hand out an image.
	}
	stale := sc.generation != sc.dev.generation
	sc.dev.mu.Unlock()

	if stale {
		sc.dev.logLocked("acquire result=out-of-date")
		return 0, driver.OutOfDate
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if len(sc.available) == 0 {
		// All images are acquired or queued for display. The simulation
		// does not model display timing, so a bounded wait cannot make
		// progress here.
		if timeout == 0 {
			return 0, driver.NotReady
		}
		return 0, driver.Timeout
	}
	idx := sc.available[0]
	sc.available = sc.available[1:]
	if ready != nil {
		sem := ready.(*Semaphore)
		if sem.Signaled() {
			// A pending signal nothing consumed; on real hardware the
			// second signal operation is invalid.
			panic("sim: acquire against an already signaled semaphore")
		}
		sem.signal()
	}
	if result != driver.Success {
		sc.dev.logLocked("acquire image=%d result=%s (scripted)", idx, result)
	} else {
		sc.dev.logLocked("acquire image=%d", idx)
	}
	return idx, result
}

// release makes an image acquirable again after presentation.
func (sc *swapchain) release(idx uint32) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.destroyed {
		return
	}
	sc.available = append(sc.available, idx)
}

// Destroy implements driver.Swapchain.
func (sc *swapchain) Destroy() {
	sc.mu.Lock()
	sc.destroyed = true
	sc.available = nil
	sc.mu.Unlock()
	sc.dev.logLocked("swapchain destroy gen=%d", sc.generation)
}

// framebuffer binds one simulated image to the render-pass layout. It
// remembers its image index so journal entries can tie recording order to
// slot reuse.
type framebuffer struct {
	imageIndex uint32
	extent     driver.Extent
	format     driver.Format
	destroyed  bool
}

var _ driver.Framebuffer = (*framebuffer)(nil)

func (f *framebuffer) Extent() driver.Extent { return f.extent }
func (f *framebuffer) Format() driver.Format { return f.format }
func (f *framebuffer) Destroy()              { f.destroyed = true }

// pipeline is an inert compiled-pipeline handle.
type pipeline struct{}

var _ driver.Pipeline = (*pipeline)(nil)

func (p *pipeline) Destroy() {}

type renderPass struct {
	format driver.Format
}

var _ driver.RenderPass = (*renderPass)(nil)

func (r *renderPass) Format() driver.Format { return r.format }
func (r *renderPass) Destroy()              {}
