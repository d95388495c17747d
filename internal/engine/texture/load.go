// Package texture decodes images used for environment lighting.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Load decodes an image file. TGA is detected by extension; everything else
// goes through the registered image decoders.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Downsample scales img to at most size x size pixels.
func Downsample(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size {
		h = h * size / w
		w = size
	}
	if h > size {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Average returns the mean color of the upper and lower halves of img, in [0,1].
// For an equirectangular environment these approximate sky and ground light.
func Average(img image.Image) (upper, lower [3]float32) {
	small := Downsample(img, 64)
	b := small.Bounds()
	mid := b.Min.Y + b.Dy()/2

	var sums [2][3]float64
	var counts [2]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		half := 0
		if y >= mid {
			half = 1
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			i := small.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sums[half][c] += float64(small.Pix[i+c]) / 255
			}
			counts[half]++
		}
	}

	for c := 0; c < 3; c++ {
		if counts[0] > 0 {
			upper[c] = float32(sums[0][c] / float64(counts[0]))
		}
		if counts[1] > 0 {
			lower[c] = float32(sums[1][c] / float64(counts[1]))
		} else {
			lower[c] = upper[c]
		}
	}
	return upper, lower
}
