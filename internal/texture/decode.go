package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedExt reports whether a file extension names a decodable stamp image.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".tga":
		return true
	}
	return false
}

// Decode decodes image bytes. name is only used to detect TGA, which has no
// magic number the image package could sniff.
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// DecodeFile reads and decodes an image file.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// ToMask resizes img to res×res and returns its luminance weighted by alpha
// as row-major values in [0,1].
func ToMask(img image.Image, res int) []float32 {
	b := img.Bounds()
	if b.Dx() != res || b.Dy() != res {
		img = transform.Resize(img, res, res, transform.Linear)
	}
	// Flatten onto black so alpha scales luminance.
	flat := image.NewRGBA(image.Rect(0, 0, res, res))
	draw.Draw(flat, flat.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
	gray := effect.Grayscale(flat)
	gb := gray.Bounds()

	mask := make([]float32, res*res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			l, _, _, _ := gray.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			mask[y*res+x] = float32(l) / 0xffff
		}
	}
	return mask
}
