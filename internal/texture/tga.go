// Package texture decodes brush stamp images and converts them to masks.
package texture

import (
	"errors"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var (
	ErrTGATruncated   = errors.New("tga: data truncated")
	ErrTGAUnsupported = errors.New("tga: unsupported format")
)

// tgaReader walks TGA pixel data in file order and places pixels into the
// destination image honouring the origin bit.
type tgaReader struct {
	img         *image.NRGBA
	data        []byte
	pos         int
	bpp         int
	topToBottom bool
	next        int // next pixel index in file order
}

func (r *tgaReader) done() bool {
	b := r.img.Bounds()
	return r.next >= b.Dx()*b.Dy()
}

func (r *tgaReader) readColor() (color.NRGBA, bool) {
	if r.pos+r.bpp > len(r.data) {
		return color.NRGBA{}, false
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}

func (r *tgaReader) put(c color.NRGBA) {
	w := r.img.Bounds().Dx()
	h := r.img.Bounds().Dy()
	x, y := r.next%w, r.next/w
	if !r.topToBottom {
		y = h - 1 - y
	}
	r.img.SetNRGBA(x, y, c)
	r.next++
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-colour
// TGA file with 24 or 32 bits per pixel. Alpha is kept straight.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 || (imageType != TGATypeUncompressed && imageType != TGATypeRLE) || (bpp != 24 && bpp != 32) {
		return nil, ErrTGAUnsupported
	}
	offset := 18 + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	r := &tgaReader{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		data:        data[offset:],
		bpp:         bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(r.data) < width*height*r.bpp {
			return nil, ErrTGATruncated
		}
		for !r.done() {
			c, _ := r.readColor()
			r.put(c)
		}
		return r.img, nil
	}

	// RLE: a header byte per packet, high bit set means one colour repeated.
	for !r.done() && r.pos < len(r.data) {
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := r.readColor()
			if !ok {
				break
			}
			for i := 0; i < count && !r.done(); i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && !r.done(); i++ {
			c, ok := r.readColor()
			if !ok {
				break
			}
			r.put(c)
		}
	}
	return r.img, nil
}
