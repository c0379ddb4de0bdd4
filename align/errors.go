package align

import (
	"fmt"
	"image"
)

// ShapeMismatchError reports that a batch mixes images of different pixel
// dimensions. It is raised before any detection work begins.
type ShapeMismatchError struct {
	// Index is the position of the offending image in the batch.
	Index int
	// Got is the offending image's width/height.
	Got image.Point
	// Want is the batch's expected width/height (taken from the first image).
	Want image.Point
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("incompatible shapes %dx%d and %dx%d (image %d)",
		e.Got.X, e.Got.Y, e.Want.X, e.Want.Y, e.Index)
}

// DegenerateCropError reports that the eye midpoints diverge by more than the
// image dimensions allow, leaving no shared crop region. The batch fails fast
// instead of producing an empty slice.
type DegenerateCropError struct {
	// Size is the non-positive crop size that was computed.
	Size image.Point
}

func (e *DegenerateCropError) Error() string {
	return fmt.Sprintf("eye midpoints too far apart: computed crop size %dx%d", e.Size.X, e.Size.Y)
}
