// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package record turns one frame's draw parameters into a finished,
// single-use command sequence. Recording is a pure function of its inputs
// and owns no state across frames, so a failed recording leaves nothing to
// unwind beyond discarding the acquisition it was meant to fill.
package record

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/present/driver"
)

var (
	// ErrIncompatibleFramebuffer means the framebuffer's format does not
	// match the render pass it is being recorded against. This is a
	// lifecycle bug (mixing resources from different generations), not a
	// surface condition, and retrying cannot fix it.
	ErrIncompatibleFramebuffer = errors.New("record: framebuffer does not match render pass")

	// ErrGeometryWithoutPipeline means a Pass carried vertex data but no
	// pipeline to draw it with.
	ErrGeometryWithoutPipeline = errors.New("record: geometry requires a pipeline")
)

// Pass describes the single render pass a frame records.
type Pass struct {
	// Clear is the color the pass starts from.
	Clear gputypes.Color

	// Pipeline, when set, is bound before drawing.
	Pipeline driver.Pipeline

	// Geometry, when set, is drawn with Pipeline. A clear-only pass leaves
	// both nil.
	Geometry *driver.Geometry
}

// Record builds the command sequence for one frame: begin the pass against
// the framebuffer, set a full-extent viewport, draw the geometry if any,
// and finish. The returned buffer is ready for submission.
func Record(dev driver.Device, rp driver.RenderPass, fb driver.Framebuffer, pass Pass) (driver.CommandBuffer, error) {
	if fb.Format() != rp.Format() {
		return nil, ErrIncompatibleFramebuffer
	}
	if pass.Geometry != nil && pass.Pipeline == nil {
		return nil, ErrGeometryWithoutPipeline
	}

	enc, err := dev.NewCommandEncoder()
	if err != nil {
		return nil, fmt.Errorf("record: creating encoder: %w", err)
	}
	if err := enc.Begin(); err != nil {
		return nil, fmt.Errorf("record: beginning commands: %w", err)
	}

	extent := fb.Extent()
	enc.BeginRenderPass(rp, fb, pass.Clear)
	enc.SetViewport(driver.Viewport{
		Width:  float32(extent.Width),
		Height: float32(extent.Height),
	})
	if pass.Pipeline != nil {
		enc.BindPipeline(pass.Pipeline)
		if pass.Geometry != nil {
			if pass.Geometry.Buffer != nil {
				enc.BindVertexBuffer(pass.Geometry.Buffer)
			}
			enc.Draw(pass.Geometry.VertexCount, 1)
		}
	}
	enc.EndRenderPass()

	cmds, err := enc.End()
	if err != nil {
		return nil, fmt.Errorf("record: finishing commands: %w", err)
	}
	return cmds, nil
}
