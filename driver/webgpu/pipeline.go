// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present/driver"
)

// CreatePipeline builds a graphics pipeline from WGSL source against the
// render pass's color format. WebGPU consumes WGSL directly.
func (d *Device) CreatePipeline(rp driver.RenderPass, wgsl string) (driver.Pipeline, error) {
	if d.closed {
		return nil, driver.ErrDeviceClosed
	}
	pass, ok := rp.(*renderPass)
	if !ok {
		return nil, fmt.Errorf("webgpu: render pass from a different backend")
	}
	format, ok := toWgpuFormat(pass.format)
	if !ok {
		return nil, fmt.Errorf("webgpu: unsupported pixel format %v", pass.format.Pixel)
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "present shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: wgsl,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: compile shader: %w", err)
	}
	defer module.Release()

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "present pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create pipeline: %w", err)
	}
	return &pipeline{rp: created}, nil
}

type pipeline struct {
	rp *wgpu.RenderPipeline
}

var _ driver.Pipeline = (*pipeline)(nil)

func (p *pipeline) Destroy() {
	p.rp.Release()
}
