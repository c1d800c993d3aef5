// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webgpu

import (
	"testing"
	"time"

	"github.com/gogpu/present/driver"
)

func TestFenceStartsSignaled(t *testing.T) {
	f := newFence(true)
	if !f.Resolved() {
		t.Error("Resolved() = false for a signaled fence")
	}
	if r := f.Wait(0); r != driver.Success {
		t.Errorf("Wait(0) = %v, want success", r)
	}
}

func TestFenceLatchesOnSignal(t *testing.T) {
	f := newFence(false)
	if f.Resolved() {
		t.Fatal("Resolved() = true before signal")
	}
	if r := f.Wait(0); r != driver.Timeout {
		t.Fatalf("Wait(0) = %v, want timeout", r)
	}
	if r := f.Wait(time.Millisecond); r != driver.Timeout {
		t.Fatalf("Wait(1ms) = %v, want timeout", r)
	}

	f.signal()
	if !f.Resolved() {
		t.Error("Resolved() = false after signal")
	}
	if r := f.Wait(driver.NoTimeout); r != driver.Success {
		t.Errorf("Wait(NoTimeout) = %v, want success", r)
	}
}

func TestFenceWaitWakesOnSignal(t *testing.T) {
	f := newFence(false)

	got := make(chan driver.Result, 1)
	go func() { got <- f.Wait(driver.NoTimeout) }()

	f.signal()
	select {
	case r := <-got:
		if r != driver.Success {
			t.Fatalf("Wait() = %v, want success", r)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() still blocked after signal")
	}
}

func TestFenceReset(t *testing.T) {
	f := newFence(true)
	if err := f.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if f.Resolved() {
		t.Fatal("Resolved() = true after reset")
	}
	if r := f.Wait(0); r != driver.Timeout {
		t.Fatalf("Wait(0) after reset = %v, want timeout", r)
	}

	f.signal()
	if r := f.Wait(0); r != driver.Success {
		t.Fatalf("Wait(0) after re-signal = %v, want success", r)
	}
}
