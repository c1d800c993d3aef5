// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"strings"
	"testing"
	"time"

	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/driver/sim"
)

// scriptedEvents feeds one pre-built batch of events per Poll call.
type scriptedEvents struct {
	batches [][]Event
}

func (s *scriptedEvents) Poll() []Event {
	if len(s.batches) == 0 {
		return nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b
}

func newTestLoop(t *testing.T, devCfg sim.Config, cfg Config) (*sim.Device, *Loop) {
	t.Helper()
	dev := sim.NewDevice(devCfg)
	t.Cleanup(func() { dev.Close() })

	cfg.Device = dev
	loop, err := Initialize(cfg)
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(loop.Shutdown)
	return dev, loop
}

func mustPresent(t *testing.T, loop *Loop) {
	t.Helper()
	res, err := loop.RunFrame()
	if err != nil {
		t.Fatalf("RunFrame() error: %v", err)
	}
	if !res.Presented() {
		t.Fatalf("RunFrame() = %v, want presented", res)
	}
}

func countPrefix(journal []string, prefix string) int {
	var n int
	for _, entry := range journal {
		if strings.HasPrefix(entry, prefix) {
			n++
		}
	}
	return n
}

func TestRunFramePresents(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})

	for i := 0; i < 4; i++ {
		mustPresent(t, loop)
	}
	journal := dev.Journal()
	if got := countPrefix(journal, "present image="); got != 4 {
		t.Errorf("presented %d frames, want 4; journal: %v", got, journal)
	}
}

func TestFramesAlternateImages(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})

	for i := 0; i < 4; i++ {
		mustPresent(t, loop)
	}

	var acquires []string
	for _, entry := range dev.Journal() {
		if strings.HasPrefix(entry, "acquire image=") {
			acquires = append(acquires, entry)
		}
	}
	want := []string{"acquire image=0", "acquire image=1", "acquire image=0", "acquire image=1"}
	if len(acquires) != len(want) {
		t.Fatalf("acquires = %v, want %v", acquires, want)
	}
	for i := range want {
		if acquires[i] != want[i] {
			t.Errorf("acquire %d = %q, want %q", i, acquires[i], want[i])
		}
	}
}

func TestRecordNeverOvertakesPresentation(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})

	for i := 0; i < 6; i++ {
		mustPresent(t, loop)
	}

	// An image may be recorded again only after its previous frame was
	// queued for display.
	journal := dev.Journal()
	lastPresent := map[string]int{}
	lastRecord := map[string]int{}
	for i, entry := range journal {
		switch {
		case strings.HasPrefix(entry, "record image="):
			img := strings.TrimPrefix(entry, "record image=")
			if prev, ok := lastRecord[img]; ok {
				presented, pok := lastPresent[img]
				if !pok || presented < prev {
					t.Fatalf("image %s recorded twice (entries %d and %d) without an intervening present; journal: %v",
						img, prev, i, journal)
				}
			}
			lastRecord[img] = i
		case strings.HasPrefix(entry, "present image="):
			img := strings.TrimPrefix(entry, "present image=")
			lastPresent[img] = i
		}
	}
}

func TestResizeCoalescing(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})
	mustPresent(t, loop)

	dev.ResizeSurface(driver.Extent{Width: 1024, Height: 768})
	loop.OnResize(driver.Extent{Width: 300, Height: 200})
	loop.OnResize(driver.Extent{Width: 640, Height: 480})
	loop.OnResize(driver.Extent{Width: 1024, Height: 768})

	mustPresent(t, loop)

	if got := loop.Extent(); got != (driver.Extent{Width: 1024, Height: 768}) {
		t.Errorf("Extent() = %v, want 1024x768", got)
	}
	if got := loop.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2 (one rebuild)", got)
	}
	// Initial build plus exactly one rebuild.
	if got := countPrefix(dev.Journal(), "swapchain create"); got != 2 {
		t.Errorf("swapchain created %d times, want 2; journal: %v", got, dev.Journal())
	}
}

func TestOutOfDateTriggersRebuildNextFrame(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})
	mustPresent(t, loop)

	// The surface changes without the window layer telling us.
	dev.ResizeSurface(driver.Extent{Width: 1024, Height: 768})

	res, err := loop.RunFrame()
	if err != nil {
		t.Fatalf("RunFrame() error: %v", err)
	}
	if res != FrameSkippedRebuild {
		t.Fatalf("RunFrame() = %v, want skipped (rebuild)", res)
	}

	mustPresent(t, loop)
	if got := loop.Extent(); got != (driver.Extent{Width: 1024, Height: 768}) {
		t.Errorf("Extent() = %v, want 1024x768", got)
	}
}

func TestMinimizedSkipsWithoutRebuilding(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})
	mustPresent(t, loop)

	dev.ResizeSurface(driver.Extent{})
	loop.OnResize(driver.Extent{})

	for i := 0; i < 3; i++ {
		res, err := loop.RunFrame()
		if err != nil {
			t.Fatalf("RunFrame() %d error: %v", i, err)
		}
		if res != FrameSkippedMinimized {
			t.Fatalf("RunFrame() %d = %v, want skipped (minimized)", i, res)
		}
	}
	if got := countPrefix(dev.Journal(), "swapchain create"); got != 1 {
		t.Errorf("swapchain created %d times while minimized, want 1", got)
	}

	dev.ResizeSurface(driver.Extent{Width: 800, Height: 600})
	loop.OnResize(driver.Extent{Width: 800, Height: 600})
	mustPresent(t, loop)
	if got := loop.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}
}

func TestAcquireTimeoutSkipsFrame(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{AcquireTimeout: 5 * time.Millisecond})

	dev.HoldCompletions()
	defer dev.ReleaseCompletions()

	mustPresent(t, loop)
	mustPresent(t, loop)

	res, err := loop.RunFrame()
	if err != nil {
		t.Fatalf("RunFrame() error: %v", err)
	}
	if res != FrameSkippedTimeout {
		t.Fatalf("RunFrame() = %v, want skipped (timeout)", res)
	}
}

func TestOldSetOutlivesItsFrames(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})

	dev.HoldCompletions()
	mustPresent(t, loop)

	// Stale surface; the skip flags the rebuild for the next frame.
	dev.ResizeSurface(driver.Extent{Width: 1024, Height: 768})
	if res, err := loop.RunFrame(); err != nil || res != FrameSkippedRebuild {
		t.Fatalf("RunFrame() = %v, %v, want skipped (rebuild)", res, err)
	}

	// The rebuild must wait for the held frame before destroying the old
	// set, so this RunFrame blocks.
	done := make(chan error, 1)
	go func() {
		_, err := loop.RunFrame()
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("RunFrame() returned (%v) with a frame still in flight", err)
	case <-time.After(20 * time.Millisecond):
	}
	if got := countPrefix(dev.Journal(), "swapchain destroy"); got != 0 {
		t.Fatalf("old swapchain destroyed while its frame was in flight; journal: %v", dev.Journal())
	}

	dev.ReleaseCompletions()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunFrame() error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunFrame() still blocked after completions released")
	}
	if got := countPrefix(dev.Journal(), "swapchain destroy"); got != 1 {
		t.Errorf("old swapchain destroyed %d times after drain, want 1", got)
	}
}

func TestCloseEventStopsLoop(t *testing.T) {
	src := &scriptedEvents{batches: [][]Event{
		{},
		{CloseEvent{}},
	}}
	_, loop := newTestLoop(t, sim.Config{}, Config{Events: src})

	mustPresent(t, loop)
	res, err := loop.RunFrame()
	if err != nil {
		t.Fatalf("RunFrame() error: %v", err)
	}
	if res != FrameClosed {
		t.Fatalf("RunFrame() = %v, want closed", res)
	}
}

func TestResizeEventsFeedController(t *testing.T) {
	src := &scriptedEvents{batches: [][]Event{
		{},
		{ResizeEvent{Extent: driver.Extent{Width: 1024, Height: 768}}},
	}}
	dev, loop := newTestLoop(t, sim.Config{}, Config{Events: src})

	mustPresent(t, loop)
	dev.ResizeSurface(driver.Extent{Width: 1024, Height: 768})
	mustPresent(t, loop)

	if got := loop.Extent(); got != (driver.Extent{Width: 1024, Height: 768}) {
		t.Errorf("Extent() = %v, want 1024x768", got)
	}
	if got := loop.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}
}

func TestShutdownBlocksOnDelayedCompletion(t *testing.T) {
	dev, loop := newTestLoop(t, sim.Config{}, Config{})

	dev.HoldCompletions()
	mustPresent(t, loop)

	done := make(chan struct{})
	go func() {
		loop.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Shutdown() returned with a frame still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	dev.ReleaseCompletions()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown() still blocked after completions released")
	}
}

func TestRunFrameAfterShutdown(t *testing.T) {
	_, loop := newTestLoop(t, sim.Config{}, Config{})
	loop.Shutdown()

	if _, err := loop.RunFrame(); err != ErrLoopClosed {
		t.Fatalf("RunFrame() error = %v, want ErrLoopClosed", err)
	}
}

func TestInitializeThroughRegistry(t *testing.T) {
	// The sim backend registers itself on import and is always available.
	loop, err := Initialize(Config{})
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	defer loop.Shutdown()

	res, err := loop.RunFrame()
	if err != nil {
		t.Fatalf("RunFrame() error: %v", err)
	}
	if !res.Presented() {
		t.Errorf("RunFrame() = %v, want presented", res)
	}
}
