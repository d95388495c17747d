package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tgaHeader(imageType byte, w, h int, bpp byte, topToBottom bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 2, 1, 24, true)
	data = append(data, 0, 0, 255, 255, 0, 0) // red, blue (BGR)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.At(0, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.At(1, 0))
}

func TestDecodeTGABottomUp(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 1, 2, 32, false)
	data = append(data, 0, 255, 0, 255, 0, 0, 255, 128) // green first, stored bottom row

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.At(0, 1))
	assert.Equal(t, color.RGBA{R: 255, A: 128}, img.At(0, 0))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 24, true)
	data = append(data,
		0x81, 10, 20, 30, // run of 2
		0x00, 1, 2, 3, // one raw pixel
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 255}, img.At(0, 0))
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 255}, img.At(1, 0))
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 255}, img.At(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, true); h[1] = 1; return h }()},
		{"grayscale", tgaHeader(3, 1, 1, 8, true)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, true)},
		{"truncated raw", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, true), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 4, 1, 24, true), 0x81, 1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestLoadAndAverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.RGBA{B: 255, A: 255}
			if y >= 4 {
				c = color.RGBA{R: 255, G: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "env.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	loaded, err := Load(path)
	require.NoError(t, err)

	upper, lower := Average(loaded)
	assert.InDelta(t, 1, upper[2], 0.05)
	assert.InDelta(t, 0, upper[0], 0.05)
	assert.InDelta(t, 1, lower[0], 0.05)
	assert.InDelta(t, 0, lower[2], 0.05)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestDownsampleKeepsAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	small := Downsample(img, 64)
	assert.Equal(t, 64, small.Bounds().Dx())
	assert.Equal(t, 32, small.Bounds().Dy())
}
