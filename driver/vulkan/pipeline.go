// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/naga"

	"github.com/gogpu/present/driver"
)

// CreatePipeline compiles wgsl with naga and builds a graphics pipeline for
// the clear-then-store render pass layout. Viewport and scissor are dynamic
// state so one pipeline survives swapchain rebuilds.
func (d *Device) CreatePipeline(rp driver.RenderPass, wgsl string) (driver.Pipeline, error) {
	pass, ok := rp.(*renderPass)
	if !ok {
		return nil, fmt.Errorf("vulkan: render pass from a different backend")
	}

	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("vulkan: compile shader: %w", err)
	}

	module, err := d.createShaderModule(spirv)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(d.device, module, nil)

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module,
			PName:  "vs_main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module,
			PName:  "fs_main\x00",
		},
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}
	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
	}
	colorBlendAttachments := []vk.PipelineColorBlendAttachmentState{{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:    vk.False,
	}}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    colorBlendAttachments,
	}
	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(d.device, &layoutInfo, nil, &layout); res != vk.Success {
		return nil, fmt.Errorf("vulkan: create pipeline layout: %s", mapResult(res))
	}

	infos := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          2,
		PStages:             shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          pass.pass,
		Subpass:             0,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
	}}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(d.device, vk.PipelineCache(vk.NullHandle), 1, infos, nil, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(d.device, layout, nil)
		return nil, fmt.Errorf("vulkan: create graphics pipeline: %s", mapResult(res))
	}

	return &pipeline{dev: d.device, pipeline: pipelines[0], layout: layout}, nil
}

func (d *Device) createShaderModule(code []byte) (vk.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    bytesToBytecode(code),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(d.device, &info, nil, &module); res != vk.Success {
		return module, fmt.Errorf("vulkan: create shader module: %s", mapResult(res))
	}
	return module, nil
}

// bytesToBytecode reinterprets SPIR-V bytes as little-endian 32-bit words.
func bytesToBytecode(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) |
			uint32(code[i*4+1])<<8 |
			uint32(code[i*4+2])<<16 |
			uint32(code[i*4+3])<<24
	}
	return words
}

type pipeline struct {
	dev      vk.Device
	pipeline vk.Pipeline
	layout   vk.PipelineLayout
}

var _ driver.Pipeline = (*pipeline)(nil)

func (p *pipeline) Destroy() {
	vk.DestroyPipeline(p.dev, p.pipeline, nil)
	vk.DestroyPipelineLayout(p.dev, p.layout, nil)
}
