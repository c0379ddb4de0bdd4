package align

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facealign/faces"
	"github.com/nvr-ai/go-facealign/images"
)

// Align crops a batch of single-face images so every face's eye midpoint
// lands at the same pixel location, using d to locate the eyes.
//
// Batches of zero or one image come back as unchanged copies; alignment is
// meaningless for them and the detector is never invoked. All images must
// share the same pixel dimensions; a mismatch fails with *ShapeMismatchError
// before any detection work starts. Detection runs strictly in input order
// and the first failing image aborts the whole batch.
//
// Arguments:
//   - d: The face detection backend.
//   - imgs: The ordered batch of caller-owned images. Read-only to this
//     function.
//
// Returns:
//   - []image.Image: The cropped images, same length and order as imgs,
//     every one with identical dimensions.
//   - error: A *ShapeMismatchError, a wrapped *faces.DetectionError naming
//     the offending image, or a *DegenerateCropError.
func Align(d faces.Detector, imgs []image.Image) ([]image.Image, error) {
	if len(imgs) <= 1 {
		out := make([]image.Image, len(imgs))
		for i, img := range imgs {
			out[i] = images.CloneRGBA(img)
		}
		return out, nil
	}

	dims := image.Pt(imgs[0].Bounds().Dx(), imgs[0].Bounds().Dy())
	for i, img := range imgs[1:] {
		got := image.Pt(img.Bounds().Dx(), img.Bounds().Dy())
		if got != dims {
			return nil, &ShapeMismatchError{Index: i + 1, Got: got, Want: dims}
		}
	}

	mids := make([]faces.Point, len(imgs))
	for i, img := range imgs {
		p, err := faces.EyeMidpoint(d, img)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		mids[i] = p
	}

	plan, err := PlanCrops(dims, mids)
	if err != nil {
		return nil, err
	}
	return plan.Apply(imgs), nil
}
