package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats.
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatForExtension maps a file extension (with or without the leading dot)
// to its ImageFormat. The second return value is false for unsupported
// extensions.
func FormatForExtension(ext string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "webp":
		return FormatWebP, true
	default:
		return "", false
	}
}

// Decode decodes raw image bytes into an image.Image.
//
// JPEG and PNG decode through the standard library; WebP decodes through
// chai2010/webp since image.Decode has no registered WebP decoder.
//
// Arguments:
//   - data: The raw encoded image bytes.
//
// Returns:
//   - image.Image: The decoded image.
//   - ImageFormat: The detected format.
//   - error: An error if the bytes are not a supported image.
func Decode(data []byte) (image.Image, ImageFormat, error) {
	if _, _, _, err := webp.GetInfo(data); err == nil {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", errors.Wrap(err, "decoding webp image")
		}
		return img, FormatWebP, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "decoding image")
	}
	return img, ImageFormat(format), nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case FormatJPEG:
		return errors.Wrap(jpeg.Encode(w, img, nil), "encoding jpeg image")
	case FormatPNG:
		return errors.Wrap(png.Encode(w, img), "encoding png image")
	case FormatWebP:
		return errors.Wrap(webp.Encode(w, img, &webp.Options{Quality: 90}), "encoding webp image")
	default:
		return errors.Errorf("unsupported image format: %q", format)
	}
}
