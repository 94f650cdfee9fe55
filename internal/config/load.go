package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside the editor.
func (c *Config) Validate() error {
	sizes := map[string]int{
		"canvas.height_size":     c.Canvas.HeightSize,
		"canvas.texture_size":    c.Canvas.TextureSize,
		"canvas.vegetation_size": c.Canvas.VegetationSize,
		"canvas.walk_size":       c.Canvas.WalkSize,
	}
	for name, size := range sizes {
		if size <= 0 || size&(size-1) != 0 {
			return fmt.Errorf("%s must be a positive power of two, got %d", name, size)
		}
	}
	if c.World.Extent <= 0 {
		return fmt.Errorf("world.extent must be positive, got %v", c.World.Extent)
	}
	if c.Brush.SizeMin <= 0 || c.Brush.SizeMax < c.Brush.SizeMin {
		return fmt.Errorf("invalid brush size range [%v, %v]", c.Brush.SizeMin, c.Brush.SizeMax)
	}
	if c.Brush.StrengthMin < 0 || c.Brush.StrengthMax > 1 || c.Brush.StrengthMax < c.Brush.StrengthMin {
		return fmt.Errorf("invalid brush strength range [%v, %v]", c.Brush.StrengthMin, c.Brush.StrengthMax)
	}
	if c.Export.NavCellSize <= 0 {
		return fmt.Errorf("export.nav_cell_size must be positive, got %d", c.Export.NavCellSize)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./terrapaint.yaml",
		filepath.Join(ConfigDir(), "terrapaint.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Terrapaint")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Terrapaint")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "terrapaint")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "terrapaint")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
