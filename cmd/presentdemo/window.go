package main

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/gogpu/present"
	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/driver/vulkan"
	"github.com/gogpu/present/driver/webgpu"
)

// windowSource adapts a GLFW window to the Vulkan and WebGPU backends'
// surface sources and the presentation loop's event source. GLFW callbacks
// buffer events; Poll pumps the queue and drains the buffer.
type windowSource struct {
	win     *glfw.Window
	pending []present.Event
}

var (
	_ vulkan.SurfaceSource = (*windowSource)(nil)
	_ webgpu.SurfaceSource = (*windowSource)(nil)
	_ present.EventSource  = (*windowSource)(nil)
)

func newWindowSource(win *glfw.Window) *windowSource {
	s := &windowSource{win: win}
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.pending = append(s.pending, present.ResizeEvent{
			Extent: driver.Extent{Width: uint32(width), Height: uint32(height)},
		})
	})
	win.SetCloseCallback(func(w *glfw.Window) {
		s.pending = append(s.pending, present.CloseEvent{})
	})
	return s
}

func (s *windowSource) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (s *windowSource) InstanceExtensions() []string {
	return s.win.GetRequiredInstanceExtensions()
}

func (s *windowSource) CreateSurface(instance vk.Instance) (uintptr, error) {
	return s.win.CreateWindowSurface(instance, nil)
}

func (s *windowSource) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(s.win)
}

func (s *windowSource) Size() (uint32, uint32) {
	w, h := s.win.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func (s *windowSource) Poll() []present.Event {
	glfw.PollEvents()
	events := s.pending
	s.pending = nil
	return events
}
