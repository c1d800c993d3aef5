// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

func buildSwapchain(t *testing.T, d *Device) driver.Swapchain {
	t.Helper()
	caps, err := d.SurfaceCapabilities()
	if err != nil {
		t.Fatalf("SurfaceCapabilities() error: %v", err)
	}
	sc, err := d.CreateSwapchain(driver.SwapchainConfig{
		Format:      caps.Formats[0],
		PresentMode: driver.PresentModeFIFO,
		Extent:      caps.CurrentExtent,
		ImageCount:  caps.MinImageCount,
	}, nil)
	if err != nil {
		t.Fatalf("CreateSwapchain() error: %v", err)
	}
	return sc
}

func TestAcquireRoundRobin(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	for _, want := range []uint32{0, 1} {
		idx, r := sc.Acquire(0, nil)
		if r != driver.Success || idx != want {
			t.Fatalf("Acquire() = %d, %v, want %d, success", idx, r, want)
		}
	}

	// Pool drained.
	if _, r := sc.Acquire(0, nil); r != driver.NotReady {
		t.Fatalf("Acquire() on drained pool = %v, want not-ready", r)
	}
	if _, r := sc.Acquire(time.Millisecond, nil); r != driver.Timeout {
		t.Fatalf("Acquire() with deadline on drained pool = %v, want timeout", r)
	}
}

func TestNoCurrentExtent(t *testing.T) {
	d := NewDevice(Config{NoCurrentExtent: true})
	defer d.Close()

	caps, err := d.SurfaceCapabilities()
	if err != nil {
		t.Fatalf("SurfaceCapabilities() error: %v", err)
	}
	if caps.HasCurrentExtent {
		t.Error("HasCurrentExtent = true with NoCurrentExtent set")
	}
	if !caps.CurrentExtent.IsZero() {
		t.Errorf("CurrentExtent = %v, want zero", caps.CurrentExtent)
	}
}

func TestAcquireSignalsSemaphore(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	sem, err := d.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore() error: %v", err)
	}
	if _, r := sc.Acquire(0, sem); r != driver.Success {
		t.Fatalf("Acquire() = %v, want success", r)
	}
	if !sem.(*Semaphore).Signaled() {
		t.Error("acquire semaphore not signaled")
	}
}

func TestAcquireRejectsPendingSignal(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	sem, err := d.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore() error: %v", err)
	}
	if _, r := sc.Acquire(0, sem); r != driver.Success {
		t.Fatalf("Acquire() = %v, want success", r)
	}

	defer func() {
		if recover() == nil {
			t.Error("Acquire() with a still-signaled semaphore did not panic")
		}
	}()
	sc.Acquire(0, sem)
}

func TestResizeMakesSwapchainStale(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	d.ResizeSurface(driver.Extent{Width: 640, Height: 480})
	if _, r := sc.Acquire(0, nil); r != driver.OutOfDate {
		t.Fatalf("Acquire() after resize = %v, want out-of-date", r)
	}

	fresh := buildSwapchain(t, d)
	defer fresh.Destroy()
	if _, r := fresh.Acquire(0, nil); r != driver.Success {
		t.Fatalf("Acquire() on fresh swapchain = %v, want success", r)
	}
}

func TestScriptedResults(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	d.FailNextAcquire(driver.SurfaceLost)
	if _, r := sc.Acquire(0, nil); r != driver.SurfaceLost {
		t.Fatalf("Acquire() = %v, want scripted surface-lost", r)
	}

	// A scripted suboptimal result still hands out an image.
	d.FailNextAcquire(driver.Suboptimal)
	sem, _ := d.CreateSemaphore()
	idx, r := sc.Acquire(0, sem)
	if r != driver.Suboptimal || idx != 0 {
		t.Fatalf("Acquire() = %d, %v, want 0, suboptimal", idx, r)
	}
	if !sem.(*Semaphore).Signaled() {
		t.Error("suboptimal acquire did not signal the semaphore")
	}
}

func TestSubmitValidatesWaits(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	rp, _ := d.CreateRenderPass(sc.Format())
	fbs, err := sc.CreateFramebuffers(rp)
	if err != nil {
		t.Fatalf("CreateFramebuffers() error: %v", err)
	}

	enc, _ := d.NewCommandEncoder()
	if err := enc.Begin(); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	enc.BeginRenderPass(rp, fbs[0], gputypes.Color{})
	enc.EndRenderPass()
	cmds, err := enc.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}

	unsignaled, _ := d.CreateSemaphore()
	if err := d.Submit(cmds, []driver.Semaphore{unsignaled}, nil, nil); err == nil {
		t.Fatal("Submit() with unsignaled wait succeeded, want error")
	}
}

func TestHeldCompletions(t *testing.T) {
	d := NewDevice(Config{})
	defer d.Close()
	sc := buildSwapchain(t, d)
	defer sc.Destroy()

	rp, _ := d.CreateRenderPass(sc.Format())
	fbs, _ := sc.CreateFramebuffers(rp)

	d.HoldCompletions()
	fence, _ := d.CreateFence(false)

	enc, _ := d.NewCommandEncoder()
	enc.Begin()
	enc.BeginRenderPass(rp, fbs[0], gputypes.Color{})
	enc.EndRenderPass()
	cmds, _ := enc.End()
	if err := d.Submit(cmds, nil, nil, fence); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if fence.Resolved() {
		t.Fatal("held fence resolved at submit")
	}
	if r := fence.Wait(time.Millisecond); r != driver.Timeout {
		t.Fatalf("Wait() on held fence = %v, want timeout", r)
	}

	if !d.ReleaseOneCompletion() {
		t.Fatal("ReleaseOneCompletion() found nothing held")
	}
	if r := fence.Wait(driver.NoTimeout); r != driver.Success {
		t.Fatalf("Wait() after release = %v, want success", r)
	}
}

func TestDeviceClosed(t *testing.T) {
	d := NewDevice(Config{})
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := d.SurfaceCapabilities(); err != driver.ErrDeviceClosed {
		t.Fatalf("SurfaceCapabilities() error = %v, want ErrDeviceClosed", err)
	}
	if _, err := d.CreateSwapchain(driver.SwapchainConfig{ImageCount: 2}, nil); err != driver.ErrDeviceClosed {
		t.Fatalf("CreateSwapchain() error = %v, want ErrDeviceClosed", err)
	}
}
