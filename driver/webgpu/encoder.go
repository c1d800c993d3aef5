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

// NewCommandEncoder implements driver.Device.
func (d *Device) NewCommandEncoder() (driver.CommandEncoder, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	return &encoder{dev: d}, nil
}

type encoder struct {
	dev  *Device
	enc  *wgpu.CommandEncoder
	pass *wgpu.RenderPassEncoder
}

var _ driver.CommandEncoder = (*encoder)(nil)

func (e *encoder) Begin() error {
	enc, err := e.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("webgpu: create command encoder: %w", err)
	}
	e.enc = enc
	return nil
}

func (e *encoder) BeginRenderPass(rp driver.RenderPass, fb driver.Framebuffer, clear gputypes.Color) {
	frame := fb.(*framebuffer)
	view := frame.sc.currentView
	if view == nil {
		panic("webgpu: recording against a swapchain with no acquired image")
	}
	e.pass = e.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: float64(clear.R),
				G: float64(clear.G),
				B: float64(clear.B),
				A: float64(clear.A),
			},
		}},
	})
}

func (e *encoder) SetViewport(v driver.Viewport) {
	e.pass.SetViewport(v.X, v.Y, v.Width, v.Height, 0, 1)
}

func (e *encoder) BindPipeline(p driver.Pipeline) {
	e.pass.SetPipeline(p.(*pipeline).rp)
}

// BindVertexBuffer is inert: this backend sources vertices from the shader
// and never creates buffer handles of its own.
func (e *encoder) BindVertexBuffer(b driver.Buffer) {}

func (e *encoder) Draw(vertexCount, instanceCount uint32) {
	e.pass.Draw(vertexCount, instanceCount, 0, 0)
}

func (e *encoder) EndRenderPass() {
	e.pass.End()
	e.pass = nil
}

func (e *encoder) End() (driver.CommandBuffer, error) {
	if e.enc == nil {
		return nil, errors.New("webgpu: End without Begin")
	}
	buf, err := e.enc.Finish(nil)
	if err != nil {
		e.enc.Release()
		e.enc = nil
		return nil, fmt.Errorf("webgpu: finish command buffer: %w", err)
	}
	e.enc.Release()
	e.enc = nil
	return &commandBuffer{buf: buf}, nil
}

type commandBuffer struct {
	buf *wgpu.CommandBuffer
}

var _ driver.CommandBuffer = (*commandBuffer)(nil)

func (c *commandBuffer) Release() {
	if c.buf == nil {
		return
	}
	c.buf.Release()
	c.buf = nil
}
