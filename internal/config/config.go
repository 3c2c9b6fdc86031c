// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Input     InputConfig     `yaml:"input"`
	Animation AnimationConfig `yaml:"animation"`
	Scene     SceneConfig     `yaml:"scene"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	ShowFPS    bool `yaml:"show_fps"`
}

// InputConfig holds pointer input settings.
type InputConfig struct {
	// DragSensitivity maps drag pixels to radians.
	DragSensitivity float32 `yaml:"drag_sensitivity"`
	// DragTarget names the node drag rotation applies to. Empty picks
	// the first root of the built scene.
	DragTarget string `yaml:"drag_target"`
}

// AnimationConfig holds animation engine settings.
type AnimationConfig struct {
	// RotationUnit is the unit animated rotation values are authored
	// in, "degrees" or "radians". Documents author rotation in degrees,
	// matching the static rotation attribute.
	RotationUnit string `yaml:"rotation_unit"`
	// TimeScale multiplies frame deltas fed to the engine. 1 is real
	// time, 0.5 is half speed.
	TimeScale float64 `yaml:"time_scale"`
}

// SceneConfig holds document settings.
type SceneConfig struct {
	// ID selects the scene section to display. Empty picks the first.
	ID string `yaml:"id"`
	// Watch reloads the document when the file changes on disk.
	Watch bool `yaml:"watch"`
	// ScreenshotDir receives captured frames.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			ShowFPS:    false,
		},
		Input: InputConfig{
			DragSensitivity: 0.005,
		},
		Animation: AnimationConfig{
			RotationUnit: "degrees",
			TimeScale:    1.0,
		},
		Scene: SceneConfig{
			Watch:         true,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
