// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/present/driver"
)

// CreateSwapchain builds a swapchain for the device surface. When old is a
// swapchain from this device it is handed to the driver for resource
// recycling; it stays valid and still belongs to the caller.
func (d *Device) CreateSwapchain(cfg driver.SwapchainConfig, old driver.Swapchain) (driver.Swapchain, error) {
	pixel := toVkFormat(cfg.Format)
	if pixel == vk.FormatUndefined {
		return nil, fmt.Errorf("vulkan: unsupported pixel format %v", cfg.Format.Pixel)
	}

	oldChain := vk.NullSwapchain
	if prev, ok := old.(*swapchain); ok {
		oldChain = prev.chain
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface,
		MinImageCount:    cfg.ImageCount,
		ImageFormat:      pixel,
		ImageColorSpace:  vk.ColorSpaceSrgbNonlinear,
		ImageExtent:      vk.Extent2D{Width: cfg.Extent.Width, Height: cfg.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     d.currentTransform(),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      toVkPresentMode(cfg.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     oldChain,
	}

	var chain vk.Swapchain
	if res := vk.CreateSwapchain(d.device, &info, nil, &chain); res != vk.Success {
		return nil, fmt.Errorf("vulkan: create swapchain: %s", mapResult(res))
	}

	var count uint32
	vk.GetSwapchainImages(d.device, chain, &count, nil)
	images := make([]vk.Image, count)
	vk.GetSwapchainImages(d.device, chain, &count, images)

	sc := &swapchain{dev: d, chain: chain, images: images, cfg: cfg}
	if err := sc.createViews(pixel); err != nil {
		sc.Destroy()
		return nil, err
	}
	return sc, nil
}

func (d *Device) currentTransform() vk.SurfaceTransformFlagBits {
	var surfCaps vk.SurfaceCapabilities
	vk.GetPhysicalDeviceSurfaceCapabilities(d.physical, d.surface, &surfCaps)
	surfCaps.Deref()
	return surfCaps.CurrentTransform
}

// CreateRenderPass builds the single color attachment layout: cleared on
// load, stored on end, transitioned to the presentable layout.
func (d *Device) CreateRenderPass(f driver.Format) (driver.RenderPass, error) {
	pixel := toVkFormat(f)
	if pixel == vk.FormatUndefined {
		return nil, fmt.Errorf("vulkan: unsupported pixel format %v", f.Pixel)
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         pixel,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pass vk.RenderPass
	if res := vk.CreateRenderPass(d.device, &info, nil, &pass); res != vk.Success {
		return nil, fmt.Errorf("vulkan: create render pass: %s", mapResult(res))
	}
	return &renderPass{dev: d.device, pass: pass, format: f}, nil
}

type swapchain struct {
	dev    *Device
	chain  vk.Swapchain
	images []vk.Image
	views  []vk.ImageView
	cfg    driver.SwapchainConfig
}

var _ driver.Swapchain = (*swapchain)(nil)

func (s *swapchain) createViews(pixel vk.Format) error {
	s.views = make([]vk.ImageView, len(s.images))
	for i, image := range s.images {
		info := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   pixel,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		if res := vk.CreateImageView(s.dev.device, &info, nil, &s.views[i]); res != vk.Success {
			return fmt.Errorf("vulkan: create image view %d: %s", i, mapResult(res))
		}
	}
	return nil
}

func (s *swapchain) ImageCount() int       { return len(s.images) }
func (s *swapchain) Extent() driver.Extent { return s.cfg.Extent }
func (s *swapchain) Format() driver.Format { return s.cfg.Format }

func (s *swapchain) CreateFramebuffers(rp driver.RenderPass) ([]driver.Framebuffer, error) {
	pass, ok := rp.(*renderPass)
	if !ok {
		return nil, fmt.Errorf("vulkan: render pass from a different backend")
	}
	fbs := make([]driver.Framebuffer, len(s.views))
	for i, view := range s.views {
		info := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      pass.pass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           s.cfg.Extent.Width,
			Height:          s.cfg.Extent.Height,
			Layers:          1,
		}
		var fb vk.Framebuffer
		if res := vk.CreateFramebuffer(s.dev.device, &info, nil, &fb); res != vk.Success {
			for _, made := range fbs[:i] {
				made.Destroy()
			}
			return nil, fmt.Errorf("vulkan: create framebuffer %d: %s", i, mapResult(res))
		}
		fbs[i] = &framebuffer{dev: s.dev.device, fb: fb, extent: s.cfg.Extent, format: s.cfg.Format}
	}
	return fbs, nil
}

func (s *swapchain) Acquire(timeout time.Duration, ready driver.Semaphore) (uint32, driver.Result) {
	sem, ok := ready.(*semaphore)
	if !ok {
		return 0, driver.DeviceLost
	}
	var index uint32
	res := vk.AcquireNextImage(s.dev.device, s.chain, timeoutNs(timeout), sem.sem, vk.Fence(vk.NullHandle), &index)
	return index, mapResult(res)
}

func (s *swapchain) Destroy() {
	for _, view := range s.views {
		vk.DestroyImageView(s.dev.device, view, nil)
	}
	s.views = nil
	vk.DestroySwapchain(s.dev.device, s.chain, nil)
	s.chain = vk.NullSwapchain
}

type renderPass struct {
	dev    vk.Device
	pass   vk.RenderPass
	format driver.Format
}

var _ driver.RenderPass = (*renderPass)(nil)

func (r *renderPass) Format() driver.Format { return r.format }

func (r *renderPass) Destroy() {
	vk.DestroyRenderPass(r.dev, r.pass, nil)
}

type framebuffer struct {
	dev    vk.Device
	fb     vk.Framebuffer
	extent driver.Extent
	format driver.Format
}

var _ driver.Framebuffer = (*framebuffer)(nil)

func (f *framebuffer) Extent() driver.Extent { return f.extent }
func (f *framebuffer) Format() driver.Format { return f.format }

func (f *framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.dev, f.fb, nil)
}
