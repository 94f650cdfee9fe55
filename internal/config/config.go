// Package config handles editor configuration loading and management.
package config

import "time"

// Config holds all editor settings.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	World   WorldConfig   `yaml:"world"`
	Brush   BrushConfig   `yaml:"brush"`
	Editor  EditorConfig  `yaml:"editor"`
	Export  ExportConfig  `yaml:"export"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
}

// CanvasConfig holds per-channel raster settings. Sizes must be powers of two.
type CanvasConfig struct {
	HeightSize     int `yaml:"height_size"`
	TextureSize    int `yaml:"texture_size"` // both texture-weight canvases
	VegetationSize int `yaml:"vegetation_size"`
	WalkSize       int `yaml:"walk_size"`

	// Optional base images used by reset; empty means a flat fill.
	HeightDefault  string `yaml:"height_default"`
	TextureDefault string `yaml:"texture_default"`

	StampResolution int `yaml:"stamp_resolution"`
	PickResolution  int `yaml:"pick_resolution"`
}

// WorldConfig describes the physical terrain footprint.
type WorldConfig struct {
	Extent      float32 `yaml:"extent"`       // world units covered by every canvas
	HeightScale float32 `yaml:"height_scale"` // stored [0,1] height times this = world Z
}

// BrushConfig holds brush parameter ranges and per-tick steps.
type BrushConfig struct {
	StampDir     string  `yaml:"stamp_dir"`
	WatchStamps  bool    `yaml:"watch_stamps"`
	SizeMin      float32 `yaml:"size_min"`
	SizeMax      float32 `yaml:"size_max"`
	SizeDefault  float32 `yaml:"size_default"`
	StrengthMin  float32 `yaml:"strength_min"`
	StrengthMax  float32 `yaml:"strength_max"`
	SizeStep     float32 `yaml:"size_step"`
	StrengthStep float32 `yaml:"strength_step"`
	HeadingStep  float32 `yaml:"heading_step"`
	BlurRadius   int     `yaml:"blur_radius"`
}

// EditorConfig holds update loop settings.
type EditorConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ExportConfig holds derived-asset settings and level file names.
type ExportConfig struct {
	Topology            string  `yaml:"topology"`
	NavCellSize         int     `yaml:"nav_cell_size"`
	UnwalkableThreshold float32 `yaml:"unwalkable_threshold"`

	HeightFile    string `yaml:"height_file"`
	DetailPrefix  string `yaml:"detail_prefix"` // <prefix>0.png and <prefix>1.png
	GrassFile     string `yaml:"grass_file"`
	NavFile       string `yaml:"nav_file"` // <name>.png and <name>.csv
	CollisionFile string `yaml:"collision_file"`
	SceneFile     string `yaml:"scene_file"`
}

// WindowConfig holds preview viewer settings.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			HeightSize:      1024,
			TextureSize:     1024,
			VegetationSize:  512,
			WalkSize:        256,
			StampResolution: 128,
			PickResolution:  128,
		},
		World: WorldConfig{
			Extent:      512,
			HeightScale: 100,
		},
		Brush: BrushConfig{
			StampDir:     "brushes",
			SizeMin:      0.5,
			SizeMax:      128,
			SizeDefault:  8,
			StrengthMin:  0,
			StrengthMax:  1,
			SizeStep:     0.25,
			StrengthStep: 0.01,
			HeadingStep:  5,
			BlurRadius:   2,
		},
		Editor: EditorConfig{
			TickInterval: 30 * time.Millisecond,
		},
		Export: ExportConfig{
			Topology:            "data/collision.obj",
			NavCellSize:         8,
			UnwalkableThreshold: 0.5,
			HeightFile:          "heightmap",
			DetailPrefix:        "detail",
			GrassFile:           "grass",
			NavFile:             "navmesh",
			CollisionFile:       "collision",
			SceneFile:           "scene",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
