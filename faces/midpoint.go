package faces

import (
	"image"

	"github.com/pkg/errors"
)

// EyeMidpoint runs one detection pass over img and reduces the result to the
// point halfway between the two eye landmarks, the anchor used to align a
// batch of portraits.
//
// Exactly one face must be present: ambiguous input is refused rather than
// guessing which face is the subject.
//
// Arguments:
//   - d: The detection backend to invoke (one synchronous call, no retries).
//   - img: The image to locate the eye midpoint in.
//
// Returns:
//   - Point: The eye midpoint in img's pixel coordinates.
//   - error: A *DetectionError when zero or multiple faces are returned, or
//     the wrapped backend error when detection itself fails.
func EyeMidpoint(d Detector, img image.Image) (Point, error) {
	detected, err := d.Detect(img)
	if err != nil {
		return Point{}, errors.Wrap(err, "detecting faces")
	}
	if len(detected) == 0 {
		return Point{}, &DetectionError{Count: 0}
	}
	if len(detected) >= 2 {
		return Point{}, &DetectionError{Count: len(detected)}
	}

	lm := detected[0].Landmarks
	return Point{
		X: (lm.LeftEye.X + lm.RightEye.X) / 2,
		Y: (lm.LeftEye.Y + lm.RightEye.Y) / 2,
	}, nil
}
