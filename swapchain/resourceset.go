// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"fmt"

	"github.com/gogpu/present/driver"
)

// ResourceSet is one generation of presentation resources: the driver
// swapchain, its render pass, and one framebuffer per image. All of them
// share a single format and extent for the lifetime of the set.
//
// A ResourceSet exclusively owns its handles. Frame-pacing code borrows
// framebuffers by index and must never outlive the set without first
// waiting for its in-flight work (see Destroy).
type ResourceSet struct {
	sc  driver.Swapchain
	rp  driver.RenderPass
	fbs []driver.Framebuffer

	format     driver.Format
	extent     driver.Extent
	generation uint64
	destroyed  bool
}

// Build queries a fresh capability snapshot and constructs a complete new
// resource set. prev may be nil (startup); when given, its format is reused
// while still supported, its extent stands in for a zero desired size, and
// its driver swapchain is offered to the backend for resource recycling. prev itself is left untouched: on any error the
// previous set remains fully presentable.
func Build(dev driver.Device, desired driver.Extent, prev *ResourceSet) (*ResourceSet, error) {
	caps, err := dev.SurfaceCapabilities()
	if err != nil {
		return nil, fmt.Errorf("swapchain: querying surface capabilities: %w", err)
	}

	var prevFormat *driver.Format
	var prevChain driver.Swapchain
	var generation uint64 = 1
	if prev != nil {
		prevFormat = &prev.format
		prevChain = prev.sc
		generation = prev.generation + 1
		// An invalidation-only rebuild carries no size. On surfaces that
		// report no extent of their own, keep the session size instead of
		// clamping a zero request up to the surface minimum.
		if desired.IsZero() {
			desired = prev.extent
		}
	}

	format, ok := chooseFormat(caps, prevFormat)
	if !ok {
		return nil, ErrUnsupportedConfiguration
	}
	mode, ok := choosePresentMode(caps)
	if !ok {
		return nil, ErrUnsupportedConfiguration
	}
	extent := chooseExtent(caps, desired)
	if extent.IsZero() {
		return nil, ErrZeroExtent
	}

	cfg := driver.SwapchainConfig{
		Format:      format,
		PresentMode: mode,
		Extent:      extent,
		ImageCount:  chooseImageCount(caps),
	}

	sc, err := dev.CreateSwapchain(cfg, prevChain)
	if err != nil {
		return nil, fmt.Errorf("swapchain: creating swapchain: %w", err)
	}

	rp, err := dev.CreateRenderPass(format)
	if err != nil {
		sc.Destroy()
		return nil, fmt.Errorf("swapchain: creating render pass: %w", err)
	}

	fbs, err := sc.CreateFramebuffers(rp)
	if err != nil {
		rp.Destroy()
		sc.Destroy()
		return nil, fmt.Errorf("swapchain: creating framebuffers: %w", err)
	}

	return &ResourceSet{
		sc:         sc,
		rp:         rp,
		fbs:        fbs,
		format:     format,
		extent:     extent,
		generation: generation,
	}, nil
}

// Swapchain returns the underlying driver swapchain for acquisition and
// presentation. Borrowed; owned by the set.
func (s *ResourceSet) Swapchain() driver.Swapchain { return s.sc }

// RenderPass returns the set's render pass. Borrowed; owned by the set.
func (s *ResourceSet) RenderPass() driver.RenderPass { return s.rp }

// Framebuffer returns the framebuffer for one image index. Borrowed; owned
// by the set.
func (s *ResourceSet) Framebuffer(imageIndex uint32) driver.Framebuffer {
	return s.fbs[imageIndex]
}

// ImageCount returns the number of presentable images in the set.
func (s *ResourceSet) ImageCount() int { return len(s.fbs) }

// Format returns the set's pixel format.
func (s *ResourceSet) Format() driver.Format { return s.format }

// Extent returns the set's size in pixels.
func (s *ResourceSet) Extent() driver.Extent { return s.extent }

// Generation returns the monotonically increasing build counter, starting
// at 1 for the set built at startup.
func (s *ResourceSet) Generation() uint64 { return s.generation }

// Destroy releases every handle the set owns. The caller must first drain
// the set's in-flight frames; the pacer's WaitInFlight provides exactly
// that guarantee. Destroy is idempotent.
func (s *ResourceSet) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, fb := range s.fbs {
		fb.Destroy()
	}
	s.fbs = nil
	s.rp.Destroy()
	s.sc.Destroy()
}
