package faces

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-facealign/images"
)

// YuNetConfig configures the OpenCV YuNet face detection backend.
type YuNetConfig struct {
	// ModelPath is the path to the YuNet ONNX model file.
	ModelPath string
	// ScoreThreshold filters out candidate faces below this confidence.
	ScoreThreshold float32
	// NMSThreshold is the IoU threshold for non-maximum suppression.
	NMSThreshold float32
}

// YuNet detects faces and their eye landmarks using OpenCV's FaceDetectorYN.
type YuNet struct {
	mu       sync.Mutex
	detector gocv.FaceDetectorYN
}

// NewYuNet creates a YuNet backend from cfg.
//
// Arguments:
//   - cfg: Backend configuration; zero thresholds fall back to 0.6 (score)
//     and 0.3 (NMS), the OpenCV defaults for this model.
//
// Returns:
//   - *YuNet: The initialized backend. Callers own it and must Close it.
//   - error: An error if the model file is missing.
func NewYuNet(cfg YuNetConfig) (*YuNet, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "YuNet model not found: %s", cfg.ModelPath)
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.6
	}
	if cfg.NMSThreshold == 0 {
		cfg.NMSThreshold = 0.3
	}

	// The input size passed here is a placeholder; Detect resets it per image.
	detector := gocv.NewFaceDetectorYN(cfg.ModelPath, "", image.Pt(320, 320))
	detector.SetScoreThreshold(cfg.ScoreThreshold)
	detector.SetNMSThreshold(cfg.NMSThreshold)

	return &YuNet{detector: detector}, nil
}

// Detect runs YuNet over img and returns all detected faces.
func (y *YuNet) Detect(img image.Image) ([]Face, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "converting image to Mat")
	}
	defer mat.Close()

	// The model was trained on BGR input; swap the R and B channels.
	gocv.CvtColor(mat, &mat, gocv.ColorBGRToRGB)

	y.mu.Lock()
	defer y.mu.Unlock()

	out := gocv.NewMat()
	defer out.Close()

	y.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))
	y.detector.Detect(mat, &out)

	// Each output row holds 15 floats: box x/y/w/h, five landmark pairs
	// (right eye, left eye, nose, right mouth corner, left mouth corner),
	// and the confidence score.
	detected := make([]Face, 0, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		x := out.GetFloatAt(r, 0)
		yPos := out.GetFloatAt(r, 1)
		w := out.GetFloatAt(r, 2)
		h := out.GetFloatAt(r, 3)

		detected = append(detected, Face{
			Box: images.Rect{
				X1: int(x), Y1: int(yPos),
				X2: int(x + w), Y2: int(yPos + h),
			},
			Score: out.GetFloatAt(r, 14),
			Landmarks: Landmarks{
				RightEye: Point{X: out.GetFloatAt(r, 4), Y: out.GetFloatAt(r, 5)},
				LeftEye:  Point{X: out.GetFloatAt(r, 6), Y: out.GetFloatAt(r, 7)},
			},
		})
	}
	return detected, nil
}

// Close releases the native detector.
func (y *YuNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.detector.Close()
}
