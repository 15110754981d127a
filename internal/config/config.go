// Application settings: defaults, optional TOML file, validation
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"image-viewer/internal/core"
	"image-viewer/internal/render"
)

// Settings is the whole settings file. Every field is optional.
type Settings struct {
	Window WindowSettings `toml:"window"`
	Viewer ViewerSettings `toml:"viewer"`
	Log    LogSettings    `toml:"log"`
}

type WindowSettings struct {
	Title  string  `toml:"title"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
	// Icon overrides the embedded window icon. Relative paths are resolved
	// against the executable directory, then the working directory.
	Icon string `toml:"icon"`
}

type ViewerSettings struct {
	// DefaultDir is where the open and save dialogs start.
	DefaultDir string  `toml:"default_dir"`
	MinScale   float64 `toml:"min_scale"`
	MaxScale   float64 `toml:"max_scale"`
	// ZoomOnLoad is "reset" or "keep".
	ZoomOnLoad string `toml:"zoom_on_load"`
	// Resampler names the smoothing filter ("catmullrom", "bilinear", ...).
	Resampler string `toml:"resampler"`
	// Watch reloads the displayed file when it changes on disk.
	Watch bool `toml:"watch"`
}

type LogSettings struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:  "Image Viewer",
			Width:  800,
			Height: 600,
		},
		Viewer: ViewerSettings{
			DefaultDir: DesktopDir(),
			MinScale:   core.DefaultMinScale,
			MaxScale:   core.DefaultMaxScale,
			ZoomOnLoad: string(core.ZoomReset),
			Resampler:  render.DefaultResampler,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", path, err)
	}

	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

func (s *Settings) applyDefaults() {
	def := Default()
	if s.Window.Title == "" {
		s.Window.Title = def.Window.Title
	}
	if s.Window.Width <= 0 {
		s.Window.Width = def.Window.Width
	}
	if s.Window.Height <= 0 {
		s.Window.Height = def.Window.Height
	}
	if s.Viewer.DefaultDir == "" {
		s.Viewer.DefaultDir = def.Viewer.DefaultDir
	}
	if s.Viewer.ZoomOnLoad == "" {
		s.Viewer.ZoomOnLoad = def.Viewer.ZoomOnLoad
	}
	if s.Viewer.Resampler == "" {
		s.Viewer.Resampler = def.Viewer.Resampler
	}
	if s.Log.Level == "" {
		s.Log.Level = def.Log.Level
	}
}

// Validate checks value ranges and enumerations
func (s Settings) Validate() error {
	if s.Viewer.MinScale <= 0 {
		return fmt.Errorf("min_scale must be positive, got %v", s.Viewer.MinScale)
	}
	if s.Viewer.MaxScale < s.Viewer.MinScale {
		return fmt.Errorf("max_scale %v is below min_scale %v", s.Viewer.MaxScale, s.Viewer.MinScale)
	}
	if s.Viewer.MinScale > 1 || s.Viewer.MaxScale < 1 {
		return fmt.Errorf("scale range [%v, %v] must include 1.0", s.Viewer.MinScale, s.Viewer.MaxScale)
	}

	switch core.ZoomPolicy(s.Viewer.ZoomOnLoad) {
	case core.ZoomReset, core.ZoomKeep:
	default:
		return fmt.Errorf("zoom_on_load must be %q or %q, got %q", core.ZoomReset, core.ZoomKeep, s.Viewer.ZoomOnLoad)
	}

	if _, err := render.NewResampler(s.Viewer.Resampler); err != nil {
		return err
	}

	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", s.Log.Level)
	}
	return nil
}

// ViewerOptions converts the viewer section for core.NewViewer.
func (s Settings) ViewerOptions() core.Options {
	return core.Options{
		MinScale:   s.Viewer.MinScale,
		MaxScale:   s.Viewer.MaxScale,
		ZoomPolicy: core.ZoomPolicy(s.Viewer.ZoomOnLoad),
	}
}

// DesktopDir is ~/Desktop when it exists, otherwise the home directory.
func DesktopDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}
