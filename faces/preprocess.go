package faces

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// prepareInput resizes img to the model input size and fills dst with CHW
// float32 planes normalized to (v - 127.5) / 128, the normalization SCRFD
// family models were trained with.
func prepareInput(img image.Image, size image.Point, dst []float32) error {
	channelSize := size.X * size.Y
	if len(dst) < channelSize*3 {
		return errors.Errorf(
			"destination tensor only holds %d floats, needs %d (make sure it's the right shape!)",
			len(dst), channelSize*3)
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	img = resize.Resize(uint(size.X), uint(size.Y), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = (float32(r>>8) - 127.5) / 128.0
			green[i] = (float32(g>>8) - 127.5) / 128.0
			blue[i] = (float32(b>>8) - 127.5) / 128.0
			i++
		}
	}
	return nil
}
