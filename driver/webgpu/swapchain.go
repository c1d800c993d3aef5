// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webgpu

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present/driver"
)

// CreateSwapchain implements driver.Device by (re)configuring the surface.
// WebGPU keeps exactly one configuration live per surface, so building a
// replacement swapchain detaches the previous one: it stays valid for
// Destroy but hands out no further textures.
func (d *Device) CreateSwapchain(cfg driver.SwapchainConfig, old driver.Swapchain) (driver.Swapchain, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	format, ok := toWgpuFormat(cfg.Format)
	if !ok {
		return nil, fmt.Errorf("webgpu: unsupported pixel format %v", cfg.Format.Pixel)
	}

	mode := wgpu.PresentModeFifo
	if cfg.PresentMode == driver.PresentModeImmediate {
		mode = wgpu.PresentModeImmediate
	}

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       cfg.Extent.Width,
		Height:      cfg.Extent.Height,
		PresentMode: mode,
		AlphaMode:   d.alphaMode,
	})

	if prev, ok := old.(*swapchain); ok {
		prev.detach()
	}

	sc := &swapchain{dev: d, cfg: cfg, live: true}
	d.configured = sc
	return sc, nil
}

// CreateRenderPass implements driver.Device. WebGPU declares attachments
// per render pass rather than ahead of time, so the handle only pins the
// format for compatibility checks.
func (d *Device) CreateRenderPass(f driver.Format) (driver.RenderPass, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	if _, ok := toWgpuFormat(f); !ok {
		return nil, fmt.Errorf("webgpu: unsupported pixel format %v", f.Pixel)
	}
	return &renderPass{format: f}, nil
}

// swapchain presents through the surface's internal image pool. The pool
// is opaque: every acquisition is image index 0, backed by whichever
// texture the surface hands out.
type swapchain struct {
	dev  *Device
	cfg  driver.SwapchainConfig
	live bool

	current     *wgpu.Texture
	currentView *wgpu.TextureView
}

var _ driver.Swapchain = (*swapchain)(nil)

func (s *swapchain) ImageCount() int       { return int(s.cfg.ImageCount) }
func (s *swapchain) Extent() driver.Extent { return s.cfg.Extent }
func (s *swapchain) Format() driver.Format { return s.cfg.Format }

func (s *swapchain) CreateFramebuffers(rp driver.RenderPass) ([]driver.Framebuffer, error) {
	if _, ok := rp.(*renderPass); !ok {
		return nil, fmt.Errorf("webgpu: render pass from a different backend")
	}
	fbs := make([]driver.Framebuffer, s.cfg.ImageCount)
	for i := range fbs {
		fbs[i] = &framebuffer{sc: s}
	}
	return fbs, nil
}

func (s *swapchain) Acquire(timeout time.Duration, ready driver.Semaphore) (uint32, driver.Result) {
	if !s.live {
		return 0, driver.OutOfDate
	}
	if s.current != nil {
		// Previous acquisition was never presented or discarded.
		s.dropCurrent()
	}

	tex, err := s.dev.surface.GetCurrentTexture()
	if err != nil {
		// The surface rejects texture fetches when its configuration no
		// longer matches the window.
		return 0, driver.OutOfDate
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, driver.DeviceLost
	}
	s.current = tex
	s.currentView = view
	return 0, driver.Success
}

func (s *swapchain) present() driver.Result {
	if !s.live {
		return driver.OutOfDate
	}
	if s.current == nil {
		return driver.DeviceLost
	}
	s.dev.surface.Present()
	s.dropCurrent()
	return driver.Success
}

func (s *swapchain) dropCurrent() {
	if s.currentView != nil {
		s.currentView.Release()
		s.currentView = nil
	}
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
}

// detach marks the swapchain as superseded by a newer configuration.
func (s *swapchain) detach() {
	s.dropCurrent()
	s.live = false
}

func (s *swapchain) Destroy() {
	s.detach()
	if s.dev.configured == s {
		s.dev.configured = nil
	}
}

type renderPass struct {
	format driver.Format
}

var _ driver.RenderPass = (*renderPass)(nil)

func (r *renderPass) Format() driver.Format { return r.format }
func (r *renderPass) Destroy()              {}

// framebuffer is a slot against the swapchain's current texture. The view
// it renders into is resolved when recording begins.
type framebuffer struct {
	sc *swapchain
}

var _ driver.Framebuffer = (*framebuffer)(nil)

func (f *framebuffer) Extent() driver.Extent { return f.sc.cfg.Extent }
func (f *framebuffer) Format() driver.Format { return f.sc.cfg.Format }
func (f *framebuffer) Destroy()              {}
