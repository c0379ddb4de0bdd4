package faces

import (
	"image"
	"os"
	"sort"
	"sync"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-facealign/images"
)

// scrfdStrides are the feature map strides of the SCRFD detection heads.
var scrfdStrides = []int{8, 16, 32}

// scrfdAnchorsPerCell is the number of anchors SCRFD places on each feature
// map cell.
const scrfdAnchorsPerCell = 2

// SCRFDConfig configures the ONNX Runtime SCRFD/RetinaFace-style backend.
type SCRFDConfig struct {
	// ModelPath is the path to the SCRFD ONNX model file.
	ModelPath string
	// LibraryPath optionally overrides the ONNX Runtime shared library
	// location. Empty means the onnxruntime default search is used.
	LibraryPath string
	// InputSize is the model input resolution. Zero means 640x640.
	InputSize image.Point
	// ScoreThreshold filters out candidate faces below this confidence.
	// Zero means 0.5.
	ScoreThreshold float32
	// NMSThreshold is the IoU threshold for non-maximum suppression.
	// Zero means 0.4.
	NMSThreshold float32
}

// SCRFD detects faces and their five-point landmarks with an SCRFD model
// running on ONNX Runtime.
type SCRFD struct {
	cfg     SCRFDConfig
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	// outputNames holds the model's nine detection outputs, grouped by kind:
	// scores for strides 8/16/32, then box deltas, then keypoint offsets.
	outputNames []string
}

// NewSCRFD creates an SCRFD backend from cfg.
//
// Order of operations:
//  1. Model file check.
//  2. ONNX Runtime environment setup (once per process).
//  3. Input/output discovery from the model itself, so exports with
//     generated tensor names work without configuration.
//  4. Session creation.
//
// Arguments:
//   - cfg: Backend configuration.
//
// Returns:
//   - *SCRFD: The initialized backend. Callers own it and must Close it.
//   - error: An error if the native runtime or the model cannot be loaded.
func NewSCRFD(cfg SCRFDConfig) (*SCRFD, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "SCRFD model not found: %s", cfg.ModelPath)
	}
	if cfg.InputSize.X == 0 || cfg.InputSize.Y == 0 {
		cfg.InputSize = image.Pt(640, 640)
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.5
	}
	if cfg.NMSThreshold == 0 {
		cfg.NMSThreshold = 0.4
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initializing ORT environment")
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading model input/output info")
	}
	if len(inputs) != 1 {
		return nil, errors.Errorf("expected a single model input, got %d", len(inputs))
	}
	if len(outputs) != len(scrfdStrides)*3 {
		return nil, errors.Errorf(
			"expected %d model outputs (score/bbox/kps per stride), got %d",
			len(scrfdStrides)*3, len(outputs))
	}

	outputNames := make([]string, 0, len(outputs))
	for _, info := range outputs {
		outputNames = append(outputNames, info.Name)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "creating ORT session options")
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath, []string{inputs[0].Name}, outputNames, options)
	if err != nil {
		return nil, errors.Wrap(err, "creating ORT session")
	}

	return &SCRFD{cfg: cfg, session: session, outputNames: outputNames}, nil
}

// Detect runs SCRFD inference over img and returns all detected faces in
// img's own pixel coordinates.
func (s *SCRFD) Detect(img image.Image) ([]Face, error) {
	inW, inH := s.cfg.InputSize.X, s.cfg.InputSize.Y

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(inH), int64(inW)))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	defer input.Destroy()

	if err := prepareInput(img, s.cfg.InputSize, input.GetData()); err != nil {
		return nil, err
	}

	outputs := make([]ort.Value, len(s.outputNames))
	s.mu.Lock()
	err = s.session.Run([]ort.Value{input}, outputs)
	s.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "running SCRFD inference")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	bounds := img.Bounds()
	// Scale factors from model input space back to source pixel space.
	sx := float32(bounds.Dx()) / float32(inW)
	sy := float32(bounds.Dy()) / float32(inH)

	var candidates []Face
	for si, stride := range scrfdStrides {
		scores, err := outputData(outputs[si])
		if err != nil {
			return nil, err
		}
		boxes, err := outputData(outputs[len(scrfdStrides)+si])
		if err != nil {
			return nil, err
		}
		kps, err := outputData(outputs[2*len(scrfdStrides)+si])
		if err != nil {
			return nil, err
		}
		candidates = append(candidates,
			s.decodeStride(stride, scores, boxes, kps, sx, sy,
				float32(bounds.Dx()), float32(bounds.Dy()))...)
	}

	return nonMaxSuppression(candidates, s.cfg.NMSThreshold), nil
}

// decodeStride converts one detection head's raw outputs into Face records.
// Box deltas are distances from the anchor center to the four box edges and
// keypoint offsets are relative to the anchor center, both in stride units.
func (s *SCRFD) decodeStride(
	stride int,
	scores, boxes, kps []float32,
	sx, sy, imgW, imgH float32,
) []Face {
	cols := s.cfg.InputSize.X / stride

	var out []Face
	for i := range scores {
		score := scores[i]
		if score < s.cfg.ScoreThreshold {
			continue
		}

		cell := i / scrfdAnchorsPerCell
		cx := float32((cell % cols) * stride)
		cy := float32((cell / cols) * stride)

		x1 := (cx - boxes[4*i]*float32(stride)) * sx
		y1 := (cy - boxes[4*i+1]*float32(stride)) * sy
		x2 := (cx + boxes[4*i+2]*float32(stride)) * sx
		y2 := (cy + boxes[4*i+3]*float32(stride)) * sy

		// Five keypoints per face; the first pair is the eye closer to the
		// image's left edge (the subject's right eye), then the other eye.
		rightEye := s.keypoint(kps, i, 0, cx, cy, stride, sx, sy, imgW, imgH)
		leftEye := s.keypoint(kps, i, 1, cx, cy, stride, sx, sy, imgW, imgH)

		out = append(out, Face{
			Box: images.Rect{
				X1: int(math32.Max(0, x1)), Y1: int(math32.Max(0, y1)),
				X2: int(math32.Min(imgW, x2)), Y2: int(math32.Min(imgH, y2)),
			},
			Score: score,
			Landmarks: Landmarks{
				LeftEye:  leftEye,
				RightEye: rightEye,
			},
		})
	}
	return out
}

// keypoint decodes the k-th five-point landmark of candidate i, clamped to
// the source image bounds.
func (s *SCRFD) keypoint(
	kps []float32, i, k int,
	cx, cy float32, stride int,
	sx, sy, imgW, imgH float32,
) Point {
	x := (cx + kps[10*i+2*k]*float32(stride)) * sx
	y := (cy + kps[10*i+2*k+1]*float32(stride)) * sy
	return Point{
		X: math32.Min(math32.Max(0, x), imgW-1),
		Y: math32.Min(math32.Max(0, y), imgH-1),
	}
}

// Close releases the native session.
func (s *SCRFD) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return errors.Wrap(err, "destroying ORT session")
}

// outputData extracts the float32 backing data of one inference output.
func outputData(v ort.Value) ([]float32, error) {
	t, ok := v.(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("unexpected output tensor type %T", v)
	}
	return t.GetData(), nil
}

// nonMaxSuppression keeps the highest-scoring candidates, greedily dropping
// any candidate whose box overlaps an already kept one beyond threshold.
func nonMaxSuppression(candidates []Face, threshold float32) []Face {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	kept := make([]Face, 0, len(candidates))
	for _, c := range candidates {
		suppressed := false
		for _, k := range kept {
			if images.CalculateIoU(c.Box, k.Box) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}
