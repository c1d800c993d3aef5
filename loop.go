// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/pacer"
	"github.com/gogpu/present/record"
	"github.com/gogpu/present/swapchain"
)

// DefaultAcquireTimeout bounds image acquisition when Config leaves the
// timeout zero. A bounded wait keeps the loop responsive to window events
// even when the display pipeline stalls.
const DefaultAcquireTimeout = time.Second

// RecordFunc records one frame's commands against the given framebuffer.
// It is called after acquisition, once per presented frame.
type RecordFunc func(dev driver.Device, rp driver.RenderPass, fb driver.Framebuffer) (driver.CommandBuffer, error)

// Config configures Initialize.
type Config struct {
	// Device is a pre-opened presentation device. When nil, Initialize
	// opens the best available backend from the driver registry.
	Device driver.Device

	// Backend selects a specific registry backend by name. Empty tries
	// backends in priority order. Ignored when Device is set.
	Backend string

	// Source is the backend-specific surface source, handed to the
	// backend factory unchanged.
	Source any

	// Label names the device for logs and debug layers.
	Label string

	// Debug enables backend validation layers where supported.
	Debug bool

	// Events, when set, is polled once at the start of every RunFrame.
	Events EventSource

	// InitialExtent sizes the first resource set on surfaces that cannot
	// report their own extent.
	InitialExtent driver.Extent

	// FramesInFlight bounds concurrent frames. Zero means the pacer
	// default.
	FramesInFlight int

	// AcquireTimeout bounds each frame's image acquisition. Zero means
	// DefaultAcquireTimeout; driver.NoTimeout blocks indefinitely.
	AcquireTimeout time.Duration

	// Clear is the color frames start from.
	Clear gputypes.Color

	// Record overrides frame recording. Nil records a clear-only pass.
	Record RecordFunc
}

// Loop drives windowed presentation frame by frame. RunFrame, Shutdown and
// DrainRebuildIfNeeded must be called from one goroutine; OnResize and
// OnInvalidated may be called from any.
type Loop struct {
	dev        driver.Device
	ownsDevice bool

	pacer *pacer.Pacer
	set   *swapchain.ResourceSet
	ctrl  controller

	events   EventSource
	clear    gputypes.Color
	recordFn RecordFunc
	timeout  time.Duration

	closed bool
}

// Initialize opens a presentation device, builds the first resource set,
// and returns a ready frame loop. Configuration failures here are fatal;
// there is no surface state to recover from before the first set exists.
func Initialize(cfg Config) (*Loop, error) {
	dev := cfg.Device
	owns := false
	if dev == nil {
		opened, name, err := openDevice(cfg)
		if err != nil {
			return nil, err
		}
		Logger().Info("presentation device opened", "backend", name)
		dev = opened
		owns = true
	}

	set, err := swapchain.Build(dev, cfg.InitialExtent, nil)
	if err != nil {
		if owns {
			dev.Close()
		}
		return nil, fmt.Errorf("present: building initial resources: %w", err)
	}

	p, err := pacer.New(dev, pacer.Config{FramesInFlight: cfg.FramesInFlight})
	if err != nil {
		set.Destroy()
		if owns {
			dev.Close()
		}
		return nil, err
	}
	if err := p.InstallResourceSet(set); err != nil {
		p.Shutdown()
		set.Destroy()
		if owns {
			dev.Close()
		}
		return nil, err
	}

	timeout := cfg.AcquireTimeout
	if timeout == 0 {
		timeout = DefaultAcquireTimeout
	}
	recordFn := cfg.Record
	if recordFn == nil {
		clear := cfg.Clear
		recordFn = func(dev driver.Device, rp driver.RenderPass, fb driver.Framebuffer) (driver.CommandBuffer, error) {
			return record.Record(dev, rp, fb, record.Pass{Clear: clear})
		}
	}

	extent := set.Extent()
	Logger().Info("presentation initialized",
		"width", extent.Width, "height", extent.Height, "images", set.ImageCount())

	return &Loop{
		dev:        dev,
		ownsDevice: owns,
		pacer:      p,
		set:        set,
		events:     cfg.Events,
		clear:      cfg.Clear,
		recordFn:   recordFn,
		timeout:    timeout,
	}, nil
}

func openDevice(cfg Config) (driver.Device, string, error) {
	opts := driver.Options{Label: cfg.Label, Source: cfg.Source, Debug: cfg.Debug}
	if cfg.Backend != "" {
		dev, err := driver.OpenByName(cfg.Backend, opts)
		return dev, cfg.Backend, err
	}

	var lastErr error
	for _, name := range driver.Available() {
		dev, err := driver.OpenByName(name, opts)
		if err == nil {
			return dev, name, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("present: all backends failed, last error: %w", lastErr)
	}
	return nil, "", driver.ErrNoBackendAvailable
}

// OnResize tells the loop the surface size changed. Safe from any
// goroutine; repeated calls between frames collapse into one rebuild at
// the latest extent.
func (l *Loop) OnResize(e driver.Extent) {
	l.ctrl.onResize(e)
}

// OnInvalidated tells the loop its resources went stale without a size
// change (display reconfiguration, compositor changes). Safe from any
// goroutine.
func (l *Loop) OnInvalidated() {
	l.ctrl.onInvalidated()
}

// Extent returns the current resource set's size.
func (l *Loop) Extent() driver.Extent { return l.set.Extent() }

// Format returns the current resource set's format.
func (l *Loop) Format() driver.Format { return l.set.Format() }

// Generation returns the current resource set's build counter.
func (l *Loop) Generation() uint64 { return l.set.Generation() }

// DrainRebuildIfNeeded performs at most one resource rebuild, claiming all
// rebuild requests posted so far. It reports whether a rebuild happened.
// swapchain.ErrZeroExtent means the surface is minimized; the rebuild stays
// queued and frames should be skipped until a non-zero resize arrives.
func (l *Loop) DrainRebuildIfNeeded() (bool, error) {
	if l.closed {
		return false, ErrLoopClosed
	}
	if l.pacer.Stale() {
		l.ctrl.onInvalidated()
	}
	desired, ok := l.ctrl.take()
	if !ok {
		return false, nil
	}

	rebuilt, err := swapchain.Build(l.dev, desired, l.set)
	if err != nil {
		if errors.Is(err, swapchain.ErrZeroExtent) {
			l.ctrl.requeue(desired)
			return false, err
		}
		return false, fmt.Errorf("present: rebuilding resources: %w", err)
	}

	// InstallResourceSet drains every frame that still references the old
	// set, so tearing it down afterwards is safe.
	if err := l.pacer.InstallResourceSet(rebuilt); err != nil {
		rebuilt.Destroy()
		return false, err
	}
	old := l.set
	l.set = rebuilt
	old.Destroy()

	extent := rebuilt.Extent()
	Logger().Info("presentation resources rebuilt",
		"generation", rebuilt.Generation(), "width", extent.Width, "height", extent.Height)
	return true, nil
}

// RunFrame produces one frame: poll events, rebuild resources if needed,
// acquire, record, submit, present. Recoverable surface conditions come
// back as skipped results with a nil error; a non-nil error means the
// device is gone and the loop cannot continue.
func (l *Loop) RunFrame() (FrameResult, error) {
	if l.closed {
		return FrameClosed, ErrLoopClosed
	}

	if l.events != nil {
		for _, ev := range l.events.Poll() {
			switch ev := ev.(type) {
			case ResizeEvent:
				l.ctrl.onResize(ev.Extent)
			case CloseEvent:
				return FrameClosed, nil
			}
		}
	}

	if _, err := l.DrainRebuildIfNeeded(); err != nil {
		if errors.Is(err, swapchain.ErrZeroExtent) {
			Logger().Debug("frame skipped", "reason", "minimized")
			return FrameSkippedMinimized, nil
		}
		return FrameSkippedRebuild, err
	}

	acq, err := l.pacer.AcquireNext(l.timeout)
	switch {
	case err == nil:
	case errors.Is(err, pacer.ErrNeedsRebuild):
		Logger().Debug("frame skipped", "reason", "stale")
		return FrameSkippedRebuild, nil
	case errors.Is(err, pacer.ErrAcquireTimeout):
		Logger().Debug("frame skipped", "reason", "timeout")
		return FrameSkippedTimeout, nil
	default:
		return FrameSkippedRebuild, fmt.Errorf("present: acquiring frame: %w", err)
	}

	cmds, err := l.recordFn(l.dev, l.set.RenderPass(), l.set.Framebuffer(acq.Index))
	if err != nil {
		l.pacer.Discard(acq)
		return FrameSkippedRebuild, fmt.Errorf("present: recording frame: %w", err)
	}

	if err := l.pacer.Submit(acq, cmds); err != nil {
		cmds.Release()
		return FrameSkippedRebuild, fmt.Errorf("present: submitting frame: %w", err)
	}

	err = l.pacer.Present(acq)
	switch {
	case err == nil:
	case errors.Is(err, pacer.ErrNeedsRebuild):
		Logger().Debug("frame skipped", "reason", "stale present")
		return FrameSkippedRebuild, nil
	default:
		return FrameSkippedRebuild, fmt.Errorf("present: presenting frame: %w", err)
	}

	return FramePresented, nil
}

// Shutdown drains all in-flight frames, then releases the loop's resources
// and, when the loop opened the device itself, the device. Idempotent.
func (l *Loop) Shutdown() {
	if l.closed {
		return
	}
	l.closed = true

	l.pacer.Shutdown()
	l.set.Destroy()
	if l.ownsDevice {
		l.dev.WaitIdle()
		l.dev.Close()
	}
	Logger().Info("presentation shut down")
}
