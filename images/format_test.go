package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage() image.Image {
	// A simple 100x100 red image.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	var jpegBuf, pngBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpegBuf, getTestImage(), nil))
	require.NoError(t, png.Encode(&pngBuf, getTestImage()))

	tests := []struct {
		name   string
		data   []byte
		format ImageFormat
	}{
		{name: "jpeg", data: jpegBuf.Bytes(), format: FormatJPEG},
		{name: "png", data: pngBuf.Bytes(), format: FormatPNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, format, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 100, img.Bounds().Dx())
			assert.Equal(t, 100, img.Bounds().Dy())
		})
	}

	_, _, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, format := range []ImageFormat{FormatJPEG, FormatPNG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, getTestImage(), format))

			img, detected, err := Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, format, detected)
			assert.Equal(t, 100, img.Bounds().Dx())
			assert.Equal(t, 100, img.Bounds().Dy())
		})
	}

	var buf bytes.Buffer
	err := Encode(&buf, getTestImage(), ImageFormat("gif"))
	assert.Error(t, err, "unsupported formats must be rejected")
}

func TestFormatForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		format ImageFormat
		ok     bool
	}{
		{ext: ".jpg", format: FormatJPEG, ok: true},
		{ext: "jpeg", format: FormatJPEG, ok: true},
		{ext: ".PNG", format: FormatPNG, ok: true},
		{ext: ".webp", format: FormatWebP, ok: true},
		{ext: ".tiff", ok: false},
		{ext: "", ok: false},
	}

	for _, tt := range tests {
		format, ok := FormatForExtension(tt.ext)
		assert.Equal(t, tt.ok, ok, "extension %q", tt.ext)
		assert.Equal(t, tt.format, format, "extension %q", tt.ext)
	}
}
