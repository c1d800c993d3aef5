// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

// encoder records a simulated single-use command sequence. It enforces the
// begin/render-pass/end ordering contract and journals which image the
// sequence targets, which lets tests correlate recording order with fence
// resolution order.
type encoder struct {
	dev        *Device
	begun      bool
	inPass     bool
	ended      bool
	imageIndex uint32
	draws      int
}

var _ driver.CommandEncoder = (*encoder)(nil)

func (e *encoder) Begin() error {
	if e.begun {
		return errors.New("sim: encoder already begun")
	}
	e.begun = true
	return nil
}

func (e *encoder) BeginRenderPass(rp driver.RenderPass, fb driver.Framebuffer, clear gputypes.Color) {
	if !e.begun || e.inPass || e.ended {
		panic("sim: BeginRenderPass outside begin/end")
	}
	sfb := fb.(*framebuffer)
	if sfb.destroyed {
		panic("sim: render pass against destroyed framebuffer")
	}
	e.inPass = true
	e.imageIndex = sfb.imageIndex
	e.dev.logLocked("record image=%d", sfb.imageIndex)
}

func (e *encoder) SetViewport(v driver.Viewport) {
	if !e.inPass {
		panic("sim: SetViewport outside render pass")
	}
}

func (e *encoder) BindPipeline(p driver.Pipeline) {
	if !e.inPass {
		panic("sim: BindPipeline outside render pass")
	}
}

func (e *encoder) BindVertexBuffer(b driver.Buffer) {
	if !e.inPass {
		panic("sim: BindVertexBuffer outside render pass")
	}
}

func (e *encoder) Draw(vertexCount, instanceCount uint32) {
	if !e.inPass {
		panic("sim: Draw outside render pass")
	}
	e.draws++
}

func (e *encoder) EndRenderPass() {
	if !e.inPass {
		panic("sim: EndRenderPass without BeginRenderPass")
	}
	e.inPass = false
}

func (e *encoder) End() (driver.CommandBuffer, error) {
	if !e.begun || e.inPass {
		return nil, errors.New("sim: End with open render pass")
	}
	e.ended = true
	return &commandBuffer{dev: e.dev, imageIndex: e.imageIndex, draws: e.draws, finished: true}, nil
}

// commandBuffer is a finished simulated command sequence. Release is
// journaled so tests can match every submission with a return of its
// buffer.
type commandBuffer struct {
	dev        *Device
	imageIndex uint32
	draws      int
	finished   bool
	released   bool
}

var _ driver.CommandBuffer = (*commandBuffer)(nil)

func (cb *commandBuffer) Release() {
	if cb.released {
		return
	}
	cb.released = true
	cb.dev.logLocked("release image=%d", cb.imageIndex)
}
