package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types the decoder understands.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA data,
// the formats environment maps are commonly exported in.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("tga: empty image %dx%d", width, height)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: topToBottom,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw(width * height)
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	pixel       int
	width       int
	height      int
	bpp         int
	topToBottom bool
}

// next reads one BGR(A) pixel from the source.
func (d *tgaDecoder) next() (color.RGBA, bool) {
	if d.pos+d.bpp > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c, true
}

// put writes c at the current pixel and advances.
func (d *tgaDecoder) put(c color.RGBA) {
	x := d.pixel % d.width
	y := d.pixel / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) raw(n int) error {
	total := d.width * d.height
	for i := 0; i < n && d.pixel < total; i++ {
		c, ok := d.next()
		if !ok {
			return errTGATruncated
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	total := d.width * d.height
	for d.pixel < total {
		if d.pos >= len(d.src) {
			return errTGATruncated
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7f) + 1

		if packet&0x80 == 0 {
			if err := d.raw(count); err != nil {
				return err
			}
			continue
		}

		c, ok := d.next()
		if !ok {
			return errTGATruncated
		}
		for i := 0; i < count && d.pixel < total; i++ {
			d.put(c)
		}
	}
	return nil
}
