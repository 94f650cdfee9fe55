package paint

import (
	"errors"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/texture"
)

// Config holds the settings an Engine is built from.
type Config struct {
	Sizes          [canvas.NumChannels]int
	Bases          [canvas.NumChannels]image.Image // nil entries use the channel fill
	Extent         float32
	HeightScale    float32
	Limits         brush.Limits
	DefaultSize    float32
	BlurRadius     int
	PickResolution int
}

// DefaultConfig returns an engine configuration matching config.Default.
func DefaultConfig() Config {
	cfg, _ := FromConfig(config.Default())
	return cfg
}

// FromConfig converts application config into engine settings and decodes
// the optional base images. A configured base image that does not exist
// is logged and replaced by the flat fill.
func FromConfig(c *config.Config) (Config, error) {
	out := Config{
		Extent:      c.World.Extent,
		HeightScale: c.World.HeightScale,
		Limits: brush.Limits{
			SizeMin:     c.Brush.SizeMin,
			SizeMax:     c.Brush.SizeMax,
			StrengthMin: c.Brush.StrengthMin,
			StrengthMax: c.Brush.StrengthMax,
		},
		DefaultSize:    c.Brush.SizeDefault,
		BlurRadius:     c.Brush.BlurRadius,
		PickResolution: c.Canvas.PickResolution,
	}
	out.Sizes[canvas.Height] = c.Canvas.HeightSize
	out.Sizes[canvas.TextureWeight] = c.Canvas.TextureSize
	out.Sizes[canvas.TextureWeight2] = c.Canvas.TextureSize
	out.Sizes[canvas.Vegetation] = c.Canvas.VegetationSize
	out.Sizes[canvas.Walkability] = c.Canvas.WalkSize

	bases := map[canvas.Channel]string{
		canvas.Height:        c.Canvas.HeightDefault,
		canvas.TextureWeight: c.Canvas.TextureDefault,
	}
	for ch, path := range bases {
		if path == "" {
			continue
		}
		img, err := texture.DecodeFile(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("default image missing, using flat fill",
				zap.Stringer("channel", ch), zap.String("path", path))
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("loading %s default image: %w", ch, err)
		}
		out.Bases[ch] = img
	}
	return out, nil
}
