// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

// NewCommandEncoder allocates a primary command buffer from the device pool
// and wraps it for single-use recording.
func (d *Device) NewCommandEncoder() (driver.CommandEncoder, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(d.device, &info, buffers); res != vk.Success {
		return nil, fmt.Errorf("vulkan: allocate command buffer: %s", mapResult(res))
	}
	return &encoder{dev: d, cb: buffers[0]}, nil
}

type encoder struct {
	dev *Device
	cb  vk.CommandBuffer
}

var _ driver.CommandEncoder = (*encoder)(nil)

func (e *encoder) Begin() error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if res := vk.BeginCommandBuffer(e.cb, &info); res != vk.Success {
		return fmt.Errorf("vulkan: begin command buffer: %s", mapResult(res))
	}
	return nil
}

func (e *encoder) BeginRenderPass(rp driver.RenderPass, fb driver.Framebuffer, clear gputypes.Color) {
	pass := rp.(*renderPass)
	frame := fb.(*framebuffer)
	extent := frame.extent

	info := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass.pass,
		Framebuffer: frame.fb,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: 1,
		PClearValues: []vk.ClearValue{
			vk.NewClearValue([]float32{float32(clear.R), float32(clear.G), float32(clear.B), float32(clear.A)}),
		},
	}
	vk.CmdBeginRenderPass(e.cb, &info, vk.SubpassContentsInline)
}

func (e *encoder) SetViewport(v driver.Viewport) {
	vk.CmdSetViewport(e.cb, 0, 1, []vk.Viewport{{
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(e.cb, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: int32(v.X), Y: int32(v.Y)},
		Extent: vk.Extent2D{Width: uint32(v.Width), Height: uint32(v.Height)},
	}})
}

func (e *encoder) BindPipeline(p driver.Pipeline) {
	vk.CmdBindPipeline(e.cb, vk.PipelineBindPointGraphics, p.(*pipeline).pipeline)
}

// BindVertexBuffer is inert: this backend sources vertices from the shader
// and never creates buffer handles of its own.
func (e *encoder) BindVertexBuffer(b driver.Buffer) {}

func (e *encoder) Draw(vertexCount, instanceCount uint32) {
	vk.CmdDraw(e.cb, vertexCount, instanceCount, 0, 0)
}

func (e *encoder) EndRenderPass() {
	vk.CmdEndRenderPass(e.cb)
}

func (e *encoder) End() (driver.CommandBuffer, error) {
	if res := vk.EndCommandBuffer(e.cb); res != vk.Success {
		return nil, fmt.Errorf("vulkan: end command buffer: %s", mapResult(res))
	}
	return &commandBuffer{dev: e.dev, cb: e.cb}, nil
}

type commandBuffer struct {
	dev *Device
	cb  vk.CommandBuffer
}

var _ driver.CommandBuffer = (*commandBuffer)(nil)

func (c *commandBuffer) Release() {
	if c.cb == nil {
		return
	}
	vk.FreeCommandBuffers(c.dev.device, c.dev.cmdPool, 1, []vk.CommandBuffer{c.cb})
	c.cb = nil
}
