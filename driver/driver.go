// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import (
	"time"

	"github.com/gogpu/gputypes"
)

// NoTimeout is the explicit "wait forever" choice for operations that take a
// timeout. A zero timeout polls; any positive duration bounds the wait.
const NoTimeout time.Duration = -1

// Extent is a surface or image size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero. A zero extent usually
// means the window is minimized and nothing can be presented.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// ColorSpace identifies how presented pixel values are interpreted.
type ColorSpace uint8

const (
	// ColorSpaceSRGBNonlinear is the ubiquitous display color space and the
	// only one the core packages select by default.
	ColorSpaceSRGBNonlinear ColorSpace = iota

	// ColorSpaceLinear is an extended linear space some compositors expose.
	ColorSpaceLinear
)

// Format is a presentable pixel format paired with its color space.
type Format struct {
	Pixel gputypes.TextureFormat
	Space ColorSpace
}

// PresentMode controls how presented images are queued to the display.
type PresentMode uint8

const (
	// PresentModeFIFO is vsync-bound, tear-free, and mandated by every
	// backend. The swapchain package always selects it.
	PresentModeFIFO PresentMode = iota

	// PresentModeMailbox replaces the queued image instead of blocking.
	PresentModeMailbox

	// PresentModeImmediate presents without vertical sync.
	PresentModeImmediate
)

// Capabilities is an immutable snapshot of what the presentation surface
// supports. It is queried fresh before every swapchain (re)build.
type Capabilities struct {
	// Formats lists supported (pixel format, color space) pairs, most
	// preferred first. Never empty for a usable surface.
	Formats []Format

	// PresentModes lists supported presentation modes. FIFO is always
	// present on conforming backends.
	PresentModes []PresentMode

	// MinImageCount and MaxImageCount bound the swapchain image pool.
	// MaxImageCount of zero means the backend imposes no upper bound.
	MinImageCount uint32
	MaxImageCount uint32

	// CurrentExtent is the surface size as reported by the platform.
	// Some platforms let the swapchain pick its own size instead; they
	// report HasCurrentExtent false and the caller's desired extent is
	// clamped to MinImageExtent..MaxImageExtent.
	CurrentExtent    Extent
	HasCurrentExtent bool

	MinImageExtent Extent
	MaxImageExtent Extent
}

// SwapchainConfig is the resolved configuration a swapchain is built with.
type SwapchainConfig struct {
	Format      Format
	PresentMode PresentMode
	Extent      Extent
	ImageCount  uint32
}

// Device is an opened presentation-capable GPU device bound to one surface.
type Device interface {
	// SurfaceCapabilities queries a fresh capability snapshot for the
	// surface this device was opened against.
	SurfaceCapabilities() (Capabilities, error)

	// CreateSwapchain builds a new swapchain. A non-nil old swapchain lets
	// the backend recycle resources; the old swapchain remains valid (and
	// must still be destroyed) whether or not creation succeeds.
	CreateSwapchain(cfg SwapchainConfig, old Swapchain) (Swapchain, error)

	// CreateRenderPass builds the fixed single-color-attachment layout
	// (clear on load, store on end, final layout presentable) for the
	// given format.
	CreateRenderPass(f Format) (RenderPass, error)

	// CreateSemaphore creates an unsignaled GPU-side ordering signal.
	CreateSemaphore() (Semaphore, error)

	// CreateFence creates a host-waitable completion signal, optionally
	// created in the resolved state.
	CreateFence(signaled bool) (Fence, error)

	// NewCommandEncoder starts recording one single-use command sequence.
	NewCommandEncoder() (CommandEncoder, error)

	// Queue returns the device's graphics+present queue. The core uses a
	// single queue for both roles.
	Queue() Queue

	// WaitIdle blocks until all submitted work on the device completes.
	WaitIdle() error

	// Close releases the device. All swapchains, signals and command
	// sequences created from it must already be destroyed.
	Close() error
}

// Queue accepts command submissions and presentation requests. Submissions
// touching the same swapchain image must be externally serialized; the pacer
// guarantees this for everything it owns.
type Queue interface {
	// Submit enqueues cmds. Execution waits for every semaphore in waits
	// before the render pass begins, then signals every semaphore in
	// signals and resolves fence when the commands finish.
	Submit(cmds CommandBuffer, waits []Semaphore, signals []Semaphore, fence Fence) error

	// Present queues image imageIndex of sc for display once every
	// semaphore in waits has signaled. A stale result means the frame was
	// displayed or discarded per platform semantics and the swapchain
	// needs rebuilding; it is not a submission failure.
	Present(sc Swapchain, imageIndex uint32, waits []Semaphore) Result
}

// Swapchain is the fixed pool of presentable images plus its metadata.
type Swapchain interface {
	ImageCount() int
	Extent() Extent
	Format() Format

	// CreateFramebuffers builds one framebuffer per image against rp.
	// The returned slice is indexed by image index. The caller owns the
	// framebuffers and destroys them before destroying the swapchain.
	CreateFramebuffers(rp RenderPass) ([]Framebuffer, error)

	// Acquire requests the next presentable image index, signaling ready
	// when the display is done reading it. Timeout semantics: zero polls,
	// NoTimeout blocks indefinitely. On anything but Success or
	// Suboptimal the returned index is meaningless.
	Acquire(timeout time.Duration, ready Semaphore) (uint32, Result)

	// Destroy releases the swapchain and its images. The caller must
	// ensure no in-flight work references them.
	Destroy()
}

// Semaphore is an opaque GPU-side ordering signal. It cannot be waited on
// from the host; it only orders queue operations against each other.
type Semaphore interface {
	Destroy()
}

// Fence is a host-waitable completion signal for one submission.
type Fence interface {
	// Wait blocks until the fence resolves or the timeout elapses.
	// Returns Success, Timeout, or DeviceLost.
	Wait(timeout time.Duration) Result

	// Resolved reports whether the fence has signaled, without blocking.
	Resolved() bool

	// Reset returns a resolved fence to the unresolved state so it can be
	// reused by a later submission.
	Reset() error

	Destroy()
}

// Framebuffer binds one swapchain image to a render pass layout.
type Framebuffer interface {
	Extent() Extent
	Format() Format
	Destroy()
}

// RenderPass is the compiled attachment layout command sequences are
// recorded against: one color attachment, clear-then-store.
type RenderPass interface {
	Format() Format
	Destroy()
}

// Pipeline is an opaque compiled graphics pipeline, constructed by
// backend-specific helpers outside the core.
type Pipeline interface {
	Destroy()
}

// PipelineDevice is implemented by backends that can compile a graphics
// pipeline for the fixed clear-then-store layout from WGSL shader source.
// The vertex entry point must be named vs_main and the fragment entry
// point fs_main.
type PipelineDevice interface {
	CreatePipeline(rp RenderPass, wgsl string) (Pipeline, error)
}

// Buffer is an opaque GPU vertex buffer handle.
type Buffer interface {
	Destroy()
}

// Geometry describes what a recorded frame draws. A nil Buffer with a
// non-zero VertexCount draws vertices generated in the shader.
type Geometry struct {
	Buffer      Buffer
	VertexCount uint32
}

// Viewport is the rectangle a command sequence renders into, in pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// CommandEncoder records exactly one render-pass begin/draw/end sequence.
// Calls must follow the order Begin, BeginRenderPass, (state + draws),
// EndRenderPass, End; backends may panic on misuse.
type CommandEncoder interface {
	Begin() error
	BeginRenderPass(rp RenderPass, fb Framebuffer, clear gputypes.Color)
	SetViewport(v Viewport)
	BindPipeline(p Pipeline)
	BindVertexBuffer(b Buffer)
	Draw(vertexCount, instanceCount uint32)
	EndRenderPass()
	End() (CommandBuffer, error)
}

// CommandBuffer is a finished single-use command sequence. Release returns
// it to the backend once the submission that used it has resolved.
type CommandBuffer interface {
	Release()
}
