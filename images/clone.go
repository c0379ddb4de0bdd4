package images

import (
	"image"
	"image/draw"
)

// CloneRGBA returns a freshly allocated RGBA copy of img with bounds
// normalized to origin (0,0). Callers that hand out results derived from
// caller-owned images use it so outputs never alias input pixel data.
func CloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// CropRGBA copies the r-sized window of img starting at offset (in img's own
// coordinate space, relative to its bounds origin) into a new RGBA image.
func CropRGBA(img image.Image, offset image.Point, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min.Add(offset), draw.Src)
	return dst
}
