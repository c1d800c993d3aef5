// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "github.com/gogpu/present/driver"

// Event is a surface event delivered by polling an EventSource. The
// concrete types are ResizeEvent and CloseEvent.
type Event interface {
	isEvent()
}

// ResizeEvent reports a new surface size in pixels. A zero extent means
// the window was minimized.
type ResizeEvent struct {
	Extent driver.Extent
}

// CloseEvent reports that the user asked to close the surface.
type CloseEvent struct{}

func (ResizeEvent) isEvent() {}
func (CloseEvent) isEvent()  {}

// EventSource supplies surface events to the frame loop. RunFrame polls it
// once per frame; Poll must return immediately with whatever is pending.
//
// Window layers that deliver events through callbacks (GLFW and most
// others) implement EventSource by pumping their callback queue in Poll
// and buffering what arrives.
type EventSource interface {
	Poll() []Event
}
