// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webgpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

// Backend is the name this backend registers under.
const Backend = "webgpu"

func init() {
	driver.Register(Backend, 50, func(opts driver.Options) (driver.Device, error) {
		src, ok := opts.Source.(SurfaceSource)
		if !ok {
			return nil, errors.New("webgpu: options source does not implement SurfaceSource")
		}
		return Open(src, opts)
	}, nil)
}

// SurfaceSource adapts a platform window layer to the WebGPU backend.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform surface descriptor for the
	// window this device presents to.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the window's current framebuffer size in pixels.
	// WebGPU surfaces do not report an extent, so capability snapshots
	// query the source instead.
	Size() (uint32, uint32)
}

// Device is a WebGPU presentation device bound to one window surface.
type Device struct {
	src      SurfaceSource
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	format    wgpu.TextureFormat
	alphaMode wgpu.CompositeAlphaMode

	// configured is the swapchain currently bound to the surface. Only
	// one can be live at a time; see (*Device).CreateSwapchain.
	configured *swapchain

	closed bool
}

var (
	_ driver.Device         = (*Device)(nil)
	_ driver.Queue          = (*Device)(nil)
	_ driver.PipelineDevice = (*Device)(nil)
)

// Open builds an instance, surface, adapter and device against the source's
// window.
func Open(src SurfaceSource, opts driver.Options) (*Device, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(src.SurfaceDescriptor())

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: requesting adapter: %w", err)
	}

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: opts.Label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: requesting device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		dev.Release()
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, errors.New("webgpu: surface reports no formats")
	}

	return &Device{
		src:       src,
		instance:  instance,
		adapter:   adapter,
		surface:   surface,
		device:    dev,
		queue:     dev.GetQueue(),
		format:    caps.Formats[0],
		alphaMode: caps.AlphaModes[0],
	}, nil
}

// SurfaceCapabilities implements driver.Device. The extent comes from the
// surface source since WebGPU surfaces carry none.
func (d *Device) SurfaceCapabilities() (driver.Capabilities, error) {
	if d.closed {
		return driver.Capabilities{}, driver.ErrDeviceClosed
	}

	caps := d.surface.GetCapabilities(d.adapter)
	formats := make([]driver.Format, 0, len(caps.Formats))
	for _, f := range caps.Formats {
		if df, ok := toDriverFormat(f); ok {
			formats = append(formats, df)
		}
	}
	if len(formats) == 0 {
		return driver.Capabilities{}, errors.New("webgpu: no presentable surface format")
	}

	w, h := d.src.Size()
	return driver.Capabilities{
		Formats: formats,
		// FIFO is the one mode WebGPU guarantees everywhere.
		PresentModes:     []driver.PresentMode{driver.PresentModeFIFO},
		MinImageCount:    2,
		MaxImageCount:    0,
		CurrentExtent:    driver.Extent{Width: w, Height: h},
		HasCurrentExtent: true,
		MinImageExtent:   driver.Extent{Width: 1, Height: 1},
		MaxImageExtent:   driver.Extent{Width: maxDimension, Height: maxDimension},
	}, nil
}

// maxDimension mirrors the WebGPU default maxTextureDimension2D limit.
const maxDimension = 8192

func toDriverFormat(f wgpu.TextureFormat) (driver.Format, bool) {
	switch f {
	case wgpu.TextureFormatBGRA8Unorm:
		return driver.Format{Pixel: gputypes.TextureFormatBGRA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}, true
	case wgpu.TextureFormatRGBA8Unorm:
		return driver.Format{Pixel: gputypes.TextureFormatRGBA8Unorm, Space: driver.ColorSpaceSRGBNonlinear}, true
	default:
		return driver.Format{}, false
	}
}

func toWgpuFormat(f driver.Format) (wgpu.TextureFormat, bool) {
	switch f.Pixel {
	case gputypes.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, true
	case gputypes.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, true
	default:
		return 0, false
	}
}

// CreateSemaphore implements driver.Device. WebGPU orders queue work
// implicitly, so semaphores are inert tokens.
func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	return &semaphore{}, nil
}

// CreateFence implements driver.Device. Fences latch when the submission
// that carries them is queued.
func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	return newFence(signaled), nil
}

func (d *Device) Queue() driver.Queue { return d }

func (d *Device) WaitIdle() error {
	if d.closed {
		return driver.ErrDeviceClosed
	}
	// Submissions complete in queue order and nothing here outlives its
	// frame, so an idle wait has nothing extra to flush.
	return nil
}

func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
	return nil
}

// Submit implements driver.Queue. Queue ordering is implicit, so the wait
// and signal tokens carry no work; the fence latches immediately.
func (d *Device) Submit(cmds driver.CommandBuffer, waits []driver.Semaphore, signals []driver.Semaphore, f driver.Fence) error {
	if d.closed {
		return driver.ErrDeviceClosed
	}
	cb, ok := cmds.(*commandBuffer)
	if !ok {
		return errors.New("webgpu: foreign command buffer")
	}
	d.queue.Submit(cb.buf)
	if latch, ok := f.(*fence); ok && latch != nil {
		latch.signal()
	}
	return nil
}

// Present implements driver.Queue.
func (d *Device) Present(sc driver.Swapchain, imageIndex uint32, waits []driver.Semaphore) driver.Result {
	if d.closed {
		return driver.DeviceLost
	}
	chain, ok := sc.(*swapchain)
	if !ok {
		return driver.DeviceLost
	}
	return chain.present()
}
