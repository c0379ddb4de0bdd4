package faces

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDetector struct {
	detected []Face
	err      error
}

func (d *fixedDetector) Detect(_ image.Image) ([]Face, error) {
	return d.detected, d.err
}

var testImage = image.NewRGBA(image.Rect(0, 0, 64, 64))

func TestEyeMidpoint_MeanOfEyeLandmarks(t *testing.T) {
	d := &fixedDetector{detected: []Face{{
		Landmarks: Landmarks{
			RightEye: Point{X: 40, Y: 52},
			LeftEye:  Point{X: 60, Y: 48},
		},
	}}}

	mid, err := EyeMidpoint(d, testImage)
	require.NoError(t, err)

	assert.InDelta(t, 50, mid.X, 1e-6)
	assert.InDelta(t, 50, mid.Y, 1e-6)
}

func TestEyeMidpoint_RequiresExactlyOneFace(t *testing.T) {
	oneFace := Face{Landmarks: Landmarks{
		RightEye: Point{X: 10, Y: 10},
		LeftEye:  Point{X: 20, Y: 10},
	}}

	tests := []struct {
		name      string
		detected  []Face
		wantMsg   string
		wantCount int
	}{
		{
			name:      "zero faces",
			detected:  nil,
			wantMsg:   "no face detected",
			wantCount: 0,
		},
		{
			name:      "two faces",
			detected:  []Face{oneFace, oneFace},
			wantMsg:   "too many faces detected",
			wantCount: 2,
		},
		{
			name:      "three faces",
			detected:  []Face{oneFace, oneFace, oneFace},
			wantMsg:   "too many faces detected",
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EyeMidpoint(&fixedDetector{detected: tt.detected}, testImage)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantMsg)

			var detErr *DetectionError
			require.ErrorAs(t, err, &detErr)
			assert.Equal(t, tt.wantCount, detErr.Count)
		})
	}
}

func TestEyeMidpoint_WrapsBackendErrors(t *testing.T) {
	d := &fixedDetector{err: errors.New("runtime not available")}

	_, err := EyeMidpoint(d, testImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime not available")

	var detErr *DetectionError
	assert.False(t, errors.As(err, &detErr), "backend failures are not DetectionErrors")
}
