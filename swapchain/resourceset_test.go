// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/driver/sim"
)

func TestBuildInitial(t *testing.T) {
	dev := sim.NewDevice(sim.Config{})
	defer dev.Close()

	set, err := Build(dev, driver.Extent{}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer set.Destroy()

	if got := set.Extent(); got != (driver.Extent{Width: 800, Height: 600}) {
		t.Errorf("Extent() = %v, want 800x600", got)
	}
	if got := set.Format(); got != bgra {
		t.Errorf("Format() = %v, want %v", got, bgra)
	}
	if got := set.ImageCount(); got != 2 {
		t.Errorf("ImageCount() = %d, want 2", got)
	}
	if got := set.Generation(); got != 1 {
		t.Errorf("Generation() = %d, want 1", got)
	}
	for i := 0; i < set.ImageCount(); i++ {
		fb := set.Framebuffer(uint32(i))
		if fb.Extent() != set.Extent() || fb.Format() != set.Format() {
			t.Errorf("framebuffer %d has %v %v, want set's %v %v",
				i, fb.Extent(), fb.Format(), set.Extent(), set.Format())
		}
	}
}

func TestBuildRebuild(t *testing.T) {
	dev := sim.NewDevice(sim.Config{})
	defer dev.Close()

	first, err := Build(dev, driver.Extent{}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	dev.ResizeSurface(driver.Extent{Width: 1024, Height: 768})
	second, err := Build(dev, driver.Extent{}, first)
	if err != nil {
		t.Fatalf("rebuild error: %v", err)
	}
	defer second.Destroy()

	if got := second.Extent(); got != (driver.Extent{Width: 1024, Height: 768}) {
		t.Errorf("Extent() = %v, want 1024x768", got)
	}
	if second.Format() != first.Format() {
		t.Errorf("format changed across rebuild: %v -> %v", first.Format(), second.Format())
	}
	if got := second.Generation(); got != first.Generation()+1 {
		t.Errorf("Generation() = %d, want %d", got, first.Generation()+1)
	}

	// Rebuilding must not tear down the previous set; the caller does that
	// once its in-flight frames have drained.
	for _, entry := range dev.Journal() {
		if strings.HasPrefix(entry, "swapchain destroy") {
			t.Fatalf("rebuild destroyed a swapchain: %q", entry)
		}
	}
	first.Destroy()
}

func TestBuildKeepsExtentWithoutSurfaceSize(t *testing.T) {
	dev := sim.NewDevice(sim.Config{NoCurrentExtent: true})
	defer dev.Close()

	want := driver.Extent{Width: 800, Height: 600}
	first, err := Build(dev, want, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer first.Destroy()
	if got := first.Extent(); got != want {
		t.Fatalf("Extent() = %v, want %v", got, want)
	}

	// An invalidation-only rebuild carries no size; the session size must
	// survive instead of collapsing to the surface minimum.
	second, err := Build(dev, driver.Extent{}, first)
	if err != nil {
		t.Fatalf("rebuild error: %v", err)
	}
	defer second.Destroy()
	if got := second.Extent(); got != want {
		t.Errorf("rebuilt Extent() = %v, want %v", got, want)
	}
}

func TestBuildZeroExtent(t *testing.T) {
	dev := sim.NewDevice(sim.Config{})
	defer dev.Close()

	set, err := Build(dev, driver.Extent{}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer set.Destroy()

	// Minimized window: the surface reports a zero extent.
	dev.ResizeSurface(driver.Extent{})
	if _, err := Build(dev, driver.Extent{}, set); !errors.Is(err, ErrZeroExtent) {
		t.Fatalf("Build() error = %v, want ErrZeroExtent", err)
	}

	// The failed rebuild must leave the previous set intact.
	for _, entry := range dev.Journal() {
		if strings.HasPrefix(entry, "swapchain destroy") {
			t.Fatalf("failed rebuild destroyed a swapchain: %q", entry)
		}
	}
}

func TestBuildImageCountClamped(t *testing.T) {
	dev := sim.NewDevice(sim.Config{MinImageCount: 3, MaxImageCount: 3})
	defer dev.Close()

	set, err := Build(dev, driver.Extent{}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer set.Destroy()

	if got := set.ImageCount(); got != 3 {
		t.Errorf("ImageCount() = %d, want 3", got)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	dev := sim.NewDevice(sim.Config{})
	defer dev.Close()

	set, err := Build(dev, driver.Extent{}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	set.Destroy()
	set.Destroy()

	var destroys int
	for _, entry := range dev.Journal() {
		if strings.HasPrefix(entry, "swapchain destroy") {
			destroys++
		}
	}
	if destroys != 1 {
		t.Errorf("swapchain destroyed %d times, want 1", destroys)
	}
}
