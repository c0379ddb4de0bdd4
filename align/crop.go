// Package align - eye-midpoint alignment of single-face image batches.
package align

import (
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-facealign/faces"
	"github.com/nvr-ai/go-facealign/images"
)

// CropPlan is the shared-size, per-image-offset crop computed for a batch.
// Invariant: every origin is non-negative and origin+Size stays inside the
// source image, so applying the plan never reads out of bounds.
type CropPlan struct {
	// Origins is the top-left crop corner for each image, in input order.
	Origins []image.Point
	// Size is the crop width/height shared by every image.
	Size image.Point
}

// PlanCrops computes the crop rectangle that aligns every image's eye
// midpoint to the same pixel offset.
//
// The batch arithmetic runs on an Nx2 tensor of midpoints: the reference
// point is the column-wise mean, each image's shift is reference minus its
// own midpoint, the lower bound is the column-wise max of the shifts (so no
// image crops at a negative offset), and the shared size is the image size
// plus the column-wise min of the shifts minus that bound. Offsets and size
// truncate to integers, never round.
//
// Arguments:
//   - dims: The width/height shared by every image in the batch.
//   - midpoints: One eye midpoint per image, in input order.
//
// Returns:
//   - CropPlan: Per-image origins plus the shared size.
//   - error: A *DegenerateCropError when the midpoints diverge by more than
//     dims allows, or a tensor arithmetic error.
func PlanCrops(dims image.Point, midpoints []faces.Point) (CropPlan, error) {
	n := len(midpoints)
	backing := make([]float32, 0, 2*n)
	for _, p := range midpoints {
		backing = append(backing, p.X, p.Y)
	}
	mids := tensor.New(tensor.WithShape(n, 2), tensor.WithBacking(backing))

	sum, err := mids.Sum(0)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "summing midpoints")
	}
	ref, err := sum.DivScalar(float32(n), true)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "computing reference midpoint")
	}
	if err := ref.Reshape(1, 2); err != nil {
		return CropPlan{}, errors.Wrap(err, "reshaping reference midpoint")
	}
	refRep, err := tensor.Repeat(ref, 0, n)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "broadcasting reference midpoint")
	}
	shiftsT, err := tensor.Sub(refRep, mids)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "computing shifts")
	}
	shifts := shiftsT.(*tensor.Dense)

	// The tightest lower offset usable across all images: the maximum shift,
	// so no image is asked to crop at a negative offset.
	low, err := shifts.Max(0)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "computing lower crop bound")
	}
	high, err := shifts.Min(0)
	if err != nil {
		return CropPlan{}, errors.Wrap(err, "computing upper crop bound")
	}

	lowV := low.Data().([]float32)
	highV := high.Data().([]float32)

	size := image.Pt(
		int(float32(dims.X)+highV[0]-lowV[0]),
		int(float32(dims.Y)+highV[1]-lowV[1]),
	)
	if size.X <= 0 || size.Y <= 0 {
		return CropPlan{}, &DegenerateCropError{Size: size}
	}

	shiftV := shifts.Data().([]float32)
	origins := make([]image.Point, n)
	for i := range origins {
		origins[i] = image.Pt(
			int(lowV[0]-shiftV[2*i]),
			int(lowV[1]-shiftV[2*i+1]),
		)
	}

	return CropPlan{Origins: origins, Size: size}, nil
}

// Apply slices each image to its planned rectangle, returning freshly
// allocated crops of identical size in input order.
func (p CropPlan) Apply(imgs []image.Image) []image.Image {
	out := make([]image.Image, len(imgs))
	for i, img := range imgs {
		out[i] = images.CropRGBA(img, p.Origins[i], p.Size)
	}
	return out
}
