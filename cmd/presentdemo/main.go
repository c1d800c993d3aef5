// Command presentdemo opens a window and presents a shader triangle
// through the swapchain presentation loop. It exercises resize handling,
// minimize skips, and clean shutdown.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/present"
	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/record"

	// Register presentation backends.
	_ "github.com/gogpu/present/driver/sim"
	_ "github.com/gogpu/present/driver/vulkan"
	_ "github.com/gogpu/present/driver/webgpu"
)

const triangleWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var positions = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.6),
        vec2<f32>(-0.6, -0.6),
        vec2<f32>(0.6, -0.6),
    );
    var colors = array<vec3<f32>, 3>(
        vec3<f32>(1.0, 0.2, 0.2),
        vec3<f32>(0.2, 1.0, 0.2),
        vec3<f32>(0.2, 0.2, 1.0),
    );
    var out: VertexOutput;
    out.position = vec4<f32>(positions[index], 0.0, 1.0);
    out.color = colors[index];
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

func main() {
	var (
		backend = flag.String("backend", "", "backend to use (default: best available)")
		width   = flag.Int("width", 800, "initial window width")
		height  = flag.Int("height", 600, "initial window height")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		present.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("init glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(*width, *height, "presentdemo", nil, nil)
	if err != nil {
		log.Fatalf("create window: %v", err)
	}
	defer win.Destroy()

	source := newWindowSource(win)
	clear := gputypes.Color{R: 0.05, G: 0.05, B: 0.08, A: 1}

	fbW, fbH := win.GetFramebufferSize()
	loop, err := present.Initialize(present.Config{
		Backend:       *backend,
		Source:        source,
		Label:         "presentdemo",
		Events:        source,
		InitialExtent: driver.Extent{Width: uint32(fbW), Height: uint32(fbH)},
		Clear:         clear,
		Record:        newTriangleRecorder(clear),
	})
	if err != nil {
		log.Fatalf("initialize presentation: %v", err)
	}
	defer loop.Shutdown()

	for {
		result, err := loop.RunFrame()
		if err != nil {
			log.Fatalf("frame failed: %v", err)
		}
		if result == present.FrameClosed {
			return
		}
	}
}

// newTriangleRecorder returns a record callback that lazily compiles the
// triangle pipeline and rebuilds it when the render pass changes, which
// happens when the swapchain format does.
func newTriangleRecorder(clear gputypes.Color) present.RecordFunc {
	var (
		builtFor driver.RenderPass
		pipe     driver.Pipeline
	)
	return func(dev driver.Device, rp driver.RenderPass, fb driver.Framebuffer) (driver.CommandBuffer, error) {
		if builtFor != rp {
			pd, ok := dev.(driver.PipelineDevice)
			if !ok {
				// Backend cannot compile pipelines; fall back to clear.
				return record.Record(dev, rp, fb, record.Pass{Clear: clear})
			}
			if pipe != nil {
				pipe.Destroy()
				pipe = nil
			}
			p, err := pd.CreatePipeline(rp, triangleWGSL)
			if err != nil {
				return nil, err
			}
			pipe = p
			builtFor = rp
		}
		return record.Record(dev, rp, fb, record.Pass{
			Clear:    clear,
			Pipeline: pipe,
			Geometry: &driver.Geometry{VertexCount: 3},
		})
	}
}
