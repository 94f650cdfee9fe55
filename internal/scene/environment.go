package scene

// Environment carries the level-wide sky, water and terrain display
// settings saved with the scene.
type Environment struct {
	TerrainTile  float32    `yaml:"terrain_tile"`
	TerrainScale float32    `yaml:"terrain_scale"`
	SkyTile      float32    `yaml:"sky_tile"`
	CloudSpeed   float32    `yaml:"cloud_speed"`
	WaveTile     float32    `yaml:"wave_tile"`
	WaveHeight   float32    `yaml:"wave_height"`
	WaveMove     [2]float32 `yaml:"wave_move"`
	WaterTile    float32    `yaml:"water_tile"`
	WaterSpeed   float32    `yaml:"water_speed"`
	WaterLevel   float32    `yaml:"water_level"` // <= 0 disables water
}

// DefaultEnvironment returns the settings a new level starts with.
func DefaultEnvironment() Environment {
	return Environment{
		TerrainTile:  16,
		TerrainScale: 100,
		SkyTile:      8,
		CloudSpeed:   0.008,
		WaveTile:     6,
		WaveHeight:   1,
		WaveMove:     [2]float32{0.005, 0.002},
		WaterTile:    20,
		WaterSpeed:   0.01,
		WaterLevel:   0,
	}
}

// HasWater reports whether the level shows a water plane.
func (e Environment) HasWater() bool {
	return e.WaterLevel > 0
}
