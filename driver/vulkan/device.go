// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/present/driver"
)

// Backend is the name this backend registers under.
const Backend = "vulkan"

func init() {
	driver.Register(Backend, 100, func(opts driver.Options) (driver.Device, error) {
		src, ok := opts.Source.(SurfaceSource)
		if !ok {
			return nil, errors.New("vulkan: options source does not implement SurfaceSource")
		}
		return Open(src, opts)
	}, nil)
}

// SurfaceSource adapts a platform window layer to the Vulkan backend.
type SurfaceSource interface {
	// ProcAddr returns the loader's vkGetInstanceProcAddr pointer.
	ProcAddr() unsafe.Pointer

	// InstanceExtensions returns the instance extensions the window
	// system requires, each null-terminated.
	InstanceExtensions() []string

	// CreateSurface creates the window's VkSurfaceKHR on the given
	// instance and returns its handle.
	CreateSurface(instance vk.Instance) (uintptr, error)
}

var deviceExtensions = []string{"VK_KHR_swapchain\x00"}

// Device is a Vulkan presentation device bound to one window surface. It
// owns the instance, surface, logical device, and the command pool frame
// recording allocates from.
type Device struct {
	instance vk.Instance
	surface  vk.Surface
	physical vk.PhysicalDevice
	device   vk.Device

	queueFamily uint32
	queue       vk.Queue
	cmdPool     vk.CommandPool

	closed bool
}

var (
	_ driver.Device         = (*Device)(nil)
	_ driver.Queue          = (*Device)(nil)
	_ driver.PipelineDevice = (*Device)(nil)
)

// Open initializes Vulkan through the source's loader and builds a device
// against the source's surface.
func Open(src SurfaceSource, opts driver.Options) (*Device, error) {
	vk.SetGetInstanceProcAddr(src.ProcAddr())
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("vulkan: initializing loader: %w", err)
	}

	label := opts.Label
	if label == "" {
		label = "present"
	}
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   label + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "present\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}
	extensions := terminatedStrs(src.InstanceExtensions())
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	if opts.Debug {
		layers := terminatedStrs([]string{"VK_LAYER_KHRONOS_validation"})
		createInfo.EnabledLayerCount = uint32(len(layers))
		createInfo.PpEnabledLayerNames = layers
	}

	var instance vk.Instance
	if res := vk.CreateInstance(createInfo, nil, &instance); res != vk.Success {
		return nil, fmt.Errorf("vulkan: creating instance: %w", mapResult(res).Err())
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("vulkan: loading instance commands: %w", err)
	}

	surfPtr, err := src.CreateSurface(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("vulkan: creating window surface: %w", err)
	}
	surface := vk.SurfaceFromPointer(surfPtr)

	d := &Device{instance: instance, surface: surface}
	if err := d.selectPhysicalDevice(); err != nil {
		d.teardown()
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		d.teardown()
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		d.teardown()
		return nil, err
	}
	return d, nil
}

// selectPhysicalDevice picks the first adapter with a queue family that can
// both draw and present to the surface and that supports the swapchain
// extension.
func (d *Device) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(d.instance, &count, nil)
	if count == 0 {
		return errors.New("vulkan: no physical devices")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(d.instance, &count, devices)

	for _, pd := range devices {
		family, ok := findQueueFamily(pd, d.surface)
		if !ok || !hasDeviceExtensions(pd) {
			continue
		}
		var formatCount uint32
		vk.GetPhysicalDeviceSurfaceFormats(pd, d.surface, &formatCount, nil)
		if formatCount == 0 {
			continue
		}
		d.physical = pd
		d.queueFamily = family
		return nil
	}
	return errors.New("vulkan: no device can present to this surface")
}

// findQueueFamily looks for a single family with both graphics and present
// support; the core drives one queue for both roles.
func findQueueFamily(pd vk.PhysicalDevice, surface vk.Surface) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)

	for i, family := range families {
		family.Deref()
		flags := family.QueueFlags
		family.Free()
		if flags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &presentSupport)
		if presentSupport == vk.True {
			return uint32(i), true
		}
	}
	return 0, false
}

func hasDeviceExtensions(pd vk.PhysicalDevice) bool {
	var count uint32
	vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)
	available := make([]vk.ExtensionProperties, count)
	vk.EnumerateDeviceExtensionProperties(pd, "", &count, available)

	required := make(map[string]bool)
	for _, ext := range deviceExtensions {
		required[unterminated(ext)] = true
	}
	for _, ext := range available {
		ext.Deref()
		delete(required, vk.ToString(ext.ExtensionName[:]))
		ext.Free()
	}
	return len(required) == 0
}

func (d *Device) createLogicalDevice() error {
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	createInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueInfo},
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: deviceExtensions,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var dev vk.Device
	if res := vk.CreateDevice(d.physical, createInfo, nil, &dev); res != vk.Success {
		return fmt.Errorf("vulkan: creating logical device: %w", mapResult(res).Err())
	}
	d.device = dev

	var queue vk.Queue
	vk.GetDeviceQueue(d.device, d.queueFamily, 0, &queue)
	d.queue = queue
	return nil
}

func (d *Device) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.queueFamily,
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vulkan: creating command pool: %w", mapResult(res).Err())
	}
	d.cmdPool = pool
	return nil
}

// SurfaceCapabilities implements driver.Device.
func (d *Device) SurfaceCapabilities() (driver.Capabilities, error) {
	if d.closed {
		return driver.Capabilities{}, driver.ErrDeviceClosed
	}

	var surfCaps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(d.physical, d.surface, &surfCaps); res != vk.Success {
		return driver.Capabilities{}, fmt.Errorf("vulkan: querying surface capabilities: %w", mapResult(res).Err())
	}
	surfCaps.Deref()
	surfCaps.CurrentExtent.Deref()
	surfCaps.MinImageExtent.Deref()
	surfCaps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &formatCount, nil)
	vkFormats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &formatCount, vkFormats)

	var formats []driver.Format
	for _, sf := range vkFormats {
		sf.Deref()
		f, ok := toDriverFormat(sf)
		sf.Free()
		if ok {
			formats = append(formats, f)
		}
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &modeCount, nil)
	vkModes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &modeCount, vkModes)

	var modes []driver.PresentMode
	for _, m := range vkModes {
		if dm, ok := toDriverPresentMode(m); ok {
			modes = append(modes, dm)
		}
	}

	caps := driver.Capabilities{
		Formats:       formats,
		PresentModes:  modes,
		MinImageCount: surfCaps.MinImageCount,
		MaxImageCount: surfCaps.MaxImageCount,
		MinImageExtent: driver.Extent{
			Width:  surfCaps.MinImageExtent.Width,
			Height: surfCaps.MinImageExtent.Height,
		},
		MaxImageExtent: driver.Extent{
			Width:  surfCaps.MaxImageExtent.Width,
			Height: surfCaps.MaxImageExtent.Height,
		},
	}
	// The magic all-ones extent means the surface takes its size from the
	// swapchain rather than reporting one.
	if surfCaps.CurrentExtent.Width != ^uint32(0) {
		caps.CurrentExtent = driver.Extent{
			Width:  surfCaps.CurrentExtent.Width,
			Height: surfCaps.CurrentExtent.Height,
		}
		caps.HasCurrentExtent = true
	}
	return caps, nil
}

// CreateSemaphore implements driver.Device.
func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var sem vk.Semaphore
	if res := vk.CreateSemaphore(d.device, &createInfo, nil, &sem); res != vk.Success {
		return nil, fmt.Errorf("vulkan: creating semaphore: %w", mapResult(res).Err())
	}
	return &semaphore{dev: d.device, sem: sem}, nil
}

// CreateFence implements driver.Device.
func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	createInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var f vk.Fence
	if res := vk.CreateFence(d.device, &createInfo, nil, &f); res != vk.Success {
		return nil, fmt.Errorf("vulkan: creating fence: %w", mapResult(res).Err())
	}
	return &fence{dev: d.device, fence: f}, nil
}

// Queue implements driver.Device. Graphics and present share one queue.
func (d *Device) Queue() driver.Queue { return d }

// WaitIdle implements driver.Device.
func (d *Device) WaitIdle() error {
	if res := vk.DeviceWaitIdle(d.device); res != vk.Success {
		return fmt.Errorf("vulkan: waiting for device idle: %w", mapResult(res).Err())
	}
	return nil
}

// Close implements driver.Device.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
	}
	d.teardown()
	return nil
}

func (d *Device) teardown() {
	if d.cmdPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.device, d.cmdPool, nil)
		d.cmdPool = vk.NullCommandPool
	}
	if d.device != nil {
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

// Submit implements driver.Queue.
func (d *Device) Submit(cmds driver.CommandBuffer, waits []driver.Semaphore, signals []driver.Semaphore, f driver.Fence) error {
	cb, ok := cmds.(*commandBuffer)
	if !ok {
		return errors.New("vulkan: foreign command buffer")
	}

	waitSems := make([]vk.Semaphore, len(waits))
	waitStages := make([]vk.PipelineStageFlags, len(waits))
	for i, s := range waits {
		waitSems[i] = s.(*semaphore).sem
		// Presentation only needs the color attachment writes ordered
		// behind the acquire.
		waitStages[i] = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	signalSems := make([]vk.Semaphore, len(signals))
	for i, s := range signals {
		signalSems[i] = s.(*semaphore).sem
	}
	var vkFence vk.Fence
	if f != nil {
		vkFence = f.(*fence).fence
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSems)),
		PWaitSemaphores:      waitSems,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.cb},
		SignalSemaphoreCount: uint32(len(signalSems)),
		PSignalSemaphores:    signalSems,
	}
	if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submitInfo}, vkFence); res != vk.Success {
		return fmt.Errorf("vulkan: submitting commands: %w", mapResult(res).Err())
	}
	return nil
}

// Present implements driver.Queue.
func (d *Device) Present(sc driver.Swapchain, imageIndex uint32, waits []driver.Semaphore) driver.Result {
	vsc, ok := sc.(*swapchain)
	if !ok {
		return driver.DeviceLost
	}
	waitSems := make([]vk.Semaphore, len(waits))
	for i, s := range waits {
		waitSems[i] = s.(*semaphore).sem
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waitSems)),
		PWaitSemaphores:    waitSems,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vsc.chain},
		PImageIndices:      []uint32{imageIndex},
	}
	return mapResult(vk.QueuePresent(d.queue, &presentInfo))
}

// terminatedStrs null-terminates strings for handoff to the C API.
func terminatedStrs(strs []string) []string {
	out := make([]string, len(strs))
	for i, s := range strs {
		if len(s) == 0 || s[len(s)-1] != '\x00' {
			s += "\x00"
		}
		out[i] = s
	}
	return out
}

func unterminated(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\x00' {
		s = s[:len(s)-1]
	}
	return s
}
