// Package faces - face detection capability and eye-landmark handling.
package faces

import (
	"image"

	"github.com/nvr-ai/go-facealign/images"
)

// Point is a 2-D coordinate in image pixel space.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Landmarks holds the named facial landmark coordinates of one detection.
type Landmarks struct {
	// LeftEye is the subject's left eye (viewer's right).
	LeftEye Point `json:"left_eye"`
	// RightEye is the subject's right eye (viewer's left).
	RightEye Point `json:"right_eye"`
}

// Face represents a single detected face.
type Face struct {
	// Box is the face bounding box in source image coordinates.
	Box images.Rect `json:"box"`
	// Score is the detector confidence for this face.
	Score float32 `json:"score"`
	// Landmarks are the named landmark positions for this face.
	Landmarks Landmarks `json:"landmarks"`
}

// Detector is the face-landmark detection capability. Implementations return
// zero, one, or many faces for a single image; callers decide how many are
// acceptable. Backends in this package wrap OpenCV DNN and ONNX Runtime
// models, and tests substitute deterministic stubs.
type Detector interface {
	Detect(img image.Image) ([]Face, error)
}
