package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/internal/config"
	"github.com/orrery-engine/orrery/pkg/animation"
	"github.com/orrery-engine/orrery/pkg/interact"
	"github.com/orrery-engine/orrery/pkg/oml"
	"github.com/orrery-engine/orrery/pkg/scene"
)

// Viewer ties the window, renderer, input, animation engine and drag
// controller together around one scene document.
type Viewer struct {
	cfg       *config.Config
	log       *zap.Logger
	scenePath string

	window   *Window
	renderer *Renderer
	input    *Input
	capturer *Capturer
	watcher  *Watcher

	backend *GLBackend
	graph   *scene.Graph
	engine  *animation.Engine
	drag    *interact.DragController

	running bool
	paused  bool
}

// New builds the viewer stack for the document at scenePath. The window
// and GL context come up first, then the scene loads into GPU
// resources. A watch failure downgrades to a static session instead of
// failing startup.
func New(cfg *config.Config, scenePath string, log *zap.Logger) (*Viewer, error) {
	v := &Viewer{
		cfg:       cfg,
		log:       log,
		scenePath: scenePath,
	}

	var err error
	v.window, err = NewWindow(WindowConfig{
		Title:      "orrery - " + filepath.Base(scenePath),
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	width, height := v.window.Size()
	v.renderer, err = NewRenderer(log, int32(width), int32(height))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	v.input = NewInput()
	v.capturer = NewCapturer(cfg.Scene.ScreenshotDir, "orrery")

	if err := v.loadScene(); err != nil {
		v.Close()
		return nil, err
	}

	if cfg.Scene.Watch {
		v.watcher, err = WatchScene(scenePath, log)
		if err != nil {
			log.Warn("scene watching disabled", zap.Error(err))
			v.watcher = nil
		}
	}

	return v, nil
}

// loadScene parses the document and replaces the live scene state. On
// error the previous state stays untouched, which is what makes a
// broken save during hot reload survivable.
func (v *Viewer) loadScene() error {
	doc, err := oml.ParseFile(v.scenePath)
	if err != nil {
		return fmt.Errorf("parse %s: %w", v.scenePath, err)
	}
	for _, d := range doc.Degradations {
		v.log.Warn("document degradation", zap.Stringer("detail", d))
	}

	backend := NewGLBackend(v.log)
	graph, err := scene.NewBuilder(v.log).Build(doc, v.cfg.Scene.ID, backend)
	if err != nil {
		backend.Close()
		return fmt.Errorf("build scene: %w", err)
	}

	// Documents author rotation in degrees unless configured otherwise.
	unit := animation.Degrees
	if v.cfg.Animation.RotationUnit == "radians" {
		unit = animation.Radians
	}
	engine := animation.NewEngine(animation.Config{Log: v.log, RotationUnit: unit})
	accepted := engine.RegisterAnimations(graph.Animations)

	if v.backend != nil {
		v.backend.Close()
	}
	v.backend = backend
	v.graph = graph
	v.engine = engine
	v.drag = v.makeDrag(graph)

	v.log.Info("scene loaded",
		zap.String("path", v.scenePath),
		zap.Int("nodes", graph.Registry.Len()),
		zap.Int("tracks", accepted),
		zap.Int("degradations", len(doc.Degradations)))
	return nil
}

// makeDrag wires the drag controller to the configured target, falling
// back to the first root node. A scene with no roots gets no controller.
func (v *Viewer) makeDrag(g *scene.Graph) *interact.DragController {
	target := v.cfg.Input.DragTarget
	if target == "" && len(g.Roots) > 0 {
		target = g.Roots[0].ID
	}
	if target == "" {
		return nil
	}
	return interact.NewDragController(g.Registry, target, v.cfg.Input.DragSensitivity)
}

// dolly moves the active camera along its view direction, one tenth of
// the distance per wheel notch.
func (v *Viewer) dolly(steps float32) {
	cam := v.backend.activeCamera(v.graph.Camera)
	if cam == nil {
		return
	}
	factor := 1 - 0.1*steps
	if factor < 0.05 {
		factor = 0.05
	}
	offset := cam.node.Position.Sub(cam.target)
	cam.node.Position = cam.target.Add(offset.Scale(factor))
}

// Run drives the frame loop until quit.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if v.cfg.Window.FPSLimit > 0 && !v.cfg.Window.VSync {
		frameBudget = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	v.log.Info("starting render loop")

	var stats animation.FrameStats
	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			break
		}

		capture := false
		for _, e := range v.input.Events() {
			switch e.Type {
			case EventWindowResize:
				v.renderer.Resize(int32(e.Width), int32(e.Height))
			case EventKeyDown:
				switch e.Key {
				case sdl.SCANCODE_ESCAPE:
					v.running = false
				case sdl.SCANCODE_SPACE:
					v.paused = !v.paused
					v.log.Info("animation clock", zap.Bool("paused", v.paused))
				case sdl.SCANCODE_R:
					if v.drag != nil {
						v.drag.Reset()
					}
				case sdl.SCANCODE_F12:
					capture = true
				}
			case EventMouseMove:
				if v.drag != nil && v.input.Dragging() {
					v.drag.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
				}
			case EventMouseWheel:
				v.dolly(float32(e.DeltaY))
			}
		}

		if v.watcher != nil {
			select {
			case <-v.watcher.Changed():
				if err := v.loadScene(); err != nil {
					v.log.Warn("scene reload failed, keeping previous", zap.Error(err))
				}
			default:
			}
		}

		if !v.paused {
			var err error
			stats, err = v.engine.Advance(dt*v.cfg.Animation.TimeScale, v.graph.Registry)
			if err != nil {
				return fmt.Errorf("advance clock: %w", err)
			}
		}

		v.renderer.Draw(v.backend, v.graph)

		if capture {
			width, height := v.window.Size()
			if path, err := v.capturer.Capture(int32(width), int32(height)); err != nil {
				v.log.Warn("screenshot failed", zap.Error(err))
			} else {
				v.log.Info("screenshot saved", zap.String("path", path))
			}
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.cfg.Window.ShowFPS {
				v.window.SetTitle(fmt.Sprintf("orrery - %s (%d fps, %d tracks)",
					filepath.Base(v.scenePath), frameCount, stats.Active))
			}
			v.log.Debug("frame rate",
				zap.Int("fps", frameCount),
				zap.Int("active_tracks", stats.Active),
				zap.Float64("clock", v.engine.Clock()))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if elapsed := time.Since(now); elapsed < frameBudget {
				time.Sleep(frameBudget - elapsed)
			}
		}
	}

	return nil
}

// Close releases resources in reverse construction order.
func (v *Viewer) Close() {
	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.backend != nil {
		v.backend.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
