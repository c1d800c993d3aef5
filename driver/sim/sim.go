// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

// Backend is the name this backend registers under.
const Backend = "sim"

func init() {
	driver.Register(Backend, 10, func(opts driver.Options) (driver.Device, error) {
		return NewDevice(Config{}), nil
	}, nil)
}

// Config configures a simulated device.
type Config struct {
	// Extent is the initial surface size. Defaults to 800x600.
	Extent driver.Extent

	// MinImageCount and MaxImageCount bound the advertised image pool.
	// Default 2 and 4.
	MinImageCount uint32
	MaxImageCount uint32

	// Formats advertised by the surface. Defaults to BGRA8 sRGB-nonlinear
	// then RGBA8 sRGB-nonlinear.
	Formats []driver.Format

	// NoCurrentExtent stops the surface from reporting its own size, like
	// presentation through an extent-less compositor. The zero value
	// matches real platforms, which almost always report one.
	NoCurrentExtent bool
}

// Device is a simulated presentation device. It implements driver.Device
// and driver.Queue.
type Device struct {
	mu sync.Mutex

	cfg        Config
	generation uint64 // surface generation; bumped by ResizeSurface
	extent     driver.Extent
	hasCurrent bool

	scriptedAcquire []driver.Result
	scriptedPresent []driver.Result

	hold    bool
	held    []*Fence
	journal []string

	closed bool
}

var (
	_ driver.Device         = (*Device)(nil)
	_ driver.Queue          = (*Device)(nil)
	_ driver.PipelineDevice = (*Device)(nil)
)

// NewDevice creates a simulated device with defaults applied.
func NewDevice(cfg Config) *Device {
	if cfg.Extent.IsZero() {
		cfg.Extent = driver.Extent{Width: 800, Height: 600}
	}
	if cfg.MinImageCount == 0 {
		cfg.MinImageCount = 2
	}
	if cfg.MaxImageCount == 0 {
		cfg.MaxImageCount = 4
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []driver.Format{
			{Pixel: gputypes.TextureFormatBGRA8Unorm, Space: driver.ColorSpaceSRGBNonlinear},
			{Pixel: gputypes.TextureFormatRGBA8Unorm, Space: driver.ColorSpaceSRGBNonlinear},
		}
	}
	return &Device{
		cfg:        cfg,
		extent:     cfg.Extent,
		hasCurrent: !cfg.NoCurrentExtent,
		generation: 1,
	}
}

// ResizeSurface changes the simulated surface size and bumps the surface
// generation, making every previously built swapchain stale.
func (d *Device) ResizeSurface(e driver.Extent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extent = e
	d.generation++
	d.log("surface resize %dx%d", e.Width, e.Height)
}

// FailNextAcquire scripts the result of the next Acquire call, overriding
// the normal round-robin behavior once per queued result.
func (d *Device) FailNextAcquire(r driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptedAcquire = append(d.scriptedAcquire, r)
}

// FailNextPresent scripts the result of the next Present call.
func (d *Device) FailNextPresent(r driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptedPresent = append(d.scriptedPresent, r)
}

// HoldCompletions stops submission fences from resolving until
// ReleaseCompletions (or ReleaseOneCompletion) is called. Used by tests
// that need work to stay in flight.
func (d *Device) HoldCompletions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hold = true
}

// ReleaseCompletions resolves every held submission fence in submit order
// and returns the device to immediate-resolution mode.
func (d *Device) ReleaseCompletions() {
	d.mu.Lock()
	held := d.held
	d.held = nil
	d.hold = false
	d.mu.Unlock()

	for _, f := range held {
		f.resolve()
	}
}

// ReleaseOneCompletion resolves the oldest held submission fence, if any.
func (d *Device) ReleaseOneCompletion() bool {
	d.mu.Lock()
	if len(d.held) == 0 {
		d.mu.Unlock()
		return false
	}
	f := d.held[0]
	d.held = d.held[1:]
	d.mu.Unlock()

	f.resolve()
	return true
}

// Journal returns a copy of the recorded event log.
func (d *Device) Journal() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.journal))
	copy(out, d.journal)
	return out
}

// ClearJournal discards the recorded event log.
func (d *Device) ClearJournal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = nil
}

// log appends a formatted event. Caller must hold d.mu.
func (d *Device) log(format string, args ...any) {
	d.journal = append(d.journal, fmt.Sprintf(format, args...))
}

// logLocked appends a formatted event, taking the lock.
func (d *Device) logLocked(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log(format, args...)
}

// SurfaceCapabilities implements driver.Device.
func (d *Device) SurfaceCapabilities() (driver.Capabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return driver.Capabilities{}, driver.ErrDeviceClosed
	}
	formats := make([]driver.Format, len(d.cfg.Formats))
	copy(formats, d.cfg.Formats)
	caps := driver.Capabilities{
		Formats:        formats,
		PresentModes:   []driver.PresentMode{driver.PresentModeFIFO, driver.PresentModeMailbox},
		MinImageCount:  d.cfg.MinImageCount,
		MaxImageCount:  d.cfg.MaxImageCount,
		MinImageExtent: driver.Extent{Width: 1, Height: 1},
		MaxImageExtent: driver.Extent{Width: 16384, Height: 16384},
	}
	if d.hasCurrent {
		caps.CurrentExtent = d.extent
		caps.HasCurrentExtent = true
	}
	return caps, nil
}

// CreateSwapchain implements driver.Device. The new swapchain is bound to
// the current surface generation; it goes stale when ResizeSurface is
// called afterwards.
func (d *Device) CreateSwapchain(cfg driver.SwapchainConfig, old driver.Swapchain) (driver.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	if cfg.ImageCount < 1 {
		return nil, errors.New("sim: swapchain needs at least one image")
	}
	sc := newSwapchain(d, cfg, d.generation)
	d.log("swapchain create gen=%d images=%d %dx%d",
		d.generation, cfg.ImageCount, cfg.Extent.Width, cfg.Extent.Height)
	return sc, nil
}

// CreateRenderPass implements driver.Device.
func (d *Device) CreateRenderPass(f driver.Format) (driver.RenderPass, error) {
	return &renderPass{format: f}, nil
}

// CreatePipeline implements driver.PipelineDevice. The simulation does not
// compile shaders; the source only has to be non-empty.
func (d *Device) CreatePipeline(rp driver.RenderPass, wgsl string) (driver.Pipeline, error) {
	if wgsl == "" {
		return nil, errors.New("sim: empty shader source")
	}
	return &pipeline{}, nil
}

// CreateSemaphore implements driver.Device.
func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	return &Semaphore{}, nil
}

// CreateFence implements driver.Device.
func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	return newFence(signaled), nil
}

// NewCommandEncoder implements driver.Device.
func (d *Device) NewCommandEncoder() (driver.CommandEncoder, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	return &encoder{dev: d}, nil
}

// Queue implements driver.Device. The simulated device is its own queue.
func (d *Device) Queue() driver.Queue { return d }

// WaitIdle implements driver.Device. With completions held this would wait
// forever on real hardware; the simulation resolves everything instead.
func (d *Device) WaitIdle() error {
	d.ReleaseCompletions()
	d.logLocked("device wait-idle")
	return nil
}

// Close implements driver.Device.
func (d *Device) Close() error {
	d.ReleaseCompletions()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Submit implements driver.Queue. Every wait semaphore must already be
// signaled; submitting against an unsignaled semaphore is the
// write-before-acquire race the pacer exists to prevent, so the simulation
// turns it into a hard error.
func (d *Device) Submit(cmds driver.CommandBuffer, waits []driver.Semaphore, signals []driver.Semaphore, fence driver.Fence) error {
	cb, ok := cmds.(*commandBuffer)
	if !ok || !cb.finished {
		return errors.New("sim: submit of unfinished command sequence")
	}

	for _, s := range waits {
		sem := s.(*Semaphore)
		if !sem.consume() {
			return errors.New("sim: submission waits on unsignaled semaphore")
		}
	}
	for _, s := range signals {
		s.(*Semaphore).signal()
	}

	d.mu.Lock()
	d.log("submit image=%d", cb.imageIndex)
	hold := d.hold
	var f *Fence
	if fence != nil {
		f = fence.(*Fence)
		f.submittedImage = cb.imageIndex
	}
	if hold && f != nil {
		d.held = append(d.held, f)
	}
	d.mu.Unlock()

	if !hold && f != nil {
		f.resolve()
	}
	return nil
}

// Present implements driver.Queue.
func (d *Device) Present(sc driver.Swapchain, imageIndex uint32, waits []driver.Semaphore) driver.Result {
	for _, s := range waits {
		sem := s.(*Semaphore)
		if !sem.consume() {
			// Presenting an image whose rendering was never submitted.
			return driver.DeviceLost
		}
	}

	d.mu.Lock()
	if len(d.scriptedPresent) > 0 {
		r := d.scriptedPresent[0]
		d.scriptedPresent = d.scriptedPresent[1:]
		d.log("present image=%d result=%s", imageIndex, r)
		d.mu.Unlock()
		if r == driver.Success || r == driver.Suboptimal {
			// A suboptimal present still displayed the frame.
			sc.(*swapchain).release(imageIndex)
		}
		return r
	}
	stale := sc.(*swapchain).generation != d.generation
	d.log("present image=%d", imageIndex)
	d.mu.Unlock()

	sc.(*swapchain).release(imageIndex)
	if stale {
		return driver.OutOfDate
	}
	return driver.Success
}
