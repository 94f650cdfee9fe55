package canvas

import "fmt"

// Channel identifies one terrain data layer. The order is fixed and is the
// creation order of canvases inside the paint engine.
type Channel int

const (
	Height Channel = iota
	TextureWeight
	Vegetation
	Walkability
	TextureWeight2
)

// NumChannels is the number of terrain channels.
const NumChannels = 5

var channelNames = [NumChannels]string{"height", "texture", "vegetation", "walkability", "texture2"}

// Channels returns every channel in canonical order.
func Channels() []Channel {
	return []Channel{Height, TextureWeight, Vegetation, Walkability, TextureWeight2}
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= 0 && c < NumChannels
}

// Binary reports whether the channel stores tag colours rather than
// continuous values.
func (c Channel) Binary() bool {
	return c == Vegetation || c == Walkability
}

// DefaultColor is the flat fill used when no base image is configured.
func (c Channel) DefaultColor() RGBA {
	switch c {
	case Height:
		return RGBA{0.5, 0.5, 0.5, 1}
	case TextureWeight:
		return RGBA{1, 0, 0, 1}
	default:
		return RGBA{0, 0, 0, 1}
	}
}

// ClearedColor is what an erase writes on a binary channel.
func (c Channel) ClearedColor() RGBA {
	return RGBA{0, 0, 0, 1}
}
