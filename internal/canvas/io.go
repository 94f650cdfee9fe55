package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/fsutil"
	"github.com/Faultbox/terrapaint/internal/logger"
)

// WriteFullImage saves the canvas as a 16-bit PNG. The file is written to a
// temporary sibling first, so a failed write never leaves a partial file.
func (c *Canvas) WriteFullImage(path string) error {
	snap := c.Snapshot()
	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return png.Encode(w, snap)
	})
	if err != nil {
		return fmt.Errorf("writing %s canvas: %w", c.channel, err)
	}
	logger.Debug("canvas written", zap.Stringer("channel", c.channel), zap.String("path", path))
	return nil
}

// LoadFullImage replaces the canvas content with the image at path.
// A missing file returns an error wrapping ErrNotFound and leaves the
// canvas untouched.
func (c *Canvas) LoadFullImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	c.Reset(img)
	logger.Debug("canvas loaded", zap.Stringer("channel", c.channel), zap.String("path", path))
	return nil
}
