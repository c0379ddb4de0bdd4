package main

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-facealign/align"
	"github.com/nvr-ai/go-facealign/faces"
	"github.com/nvr-ai/go-facealign/images"
	"github.com/nvr-ai/go-facealign/util"
)

// Options holds the alignment run configuration.
type Options struct {
	InputDir       string
	OutputDir      string
	ModelPath      string
	Backend        string
	LibraryPath    string
	ScoreThreshold float32
	NMSThreshold   float32
}

var opts Options

var rootCmd = &cobra.Command{
	Use:   "facealign",
	Short: "Align single-face portraits by their inter-eye midpoint",
	Long: `facealign detects the face in every image of a batch, locates the
midpoint between the eyes, and crops all images to the shared region that
puts every eye midpoint at the same pixel location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(opts)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Directory of input images (jpeg/png/webp)")
	rootCmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Directory to write aligned crops to")
	rootCmd.Flags().StringVarP(&opts.ModelPath, "model", "m", "", "Path to the face detection model (ONNX)")
	rootCmd.Flags().StringVarP(&opts.Backend, "backend", "b", "yunet", "Detection backend: yunet or scrfd")
	rootCmd.Flags().StringVar(&opts.LibraryPath, "ort-library", "", "ONNX Runtime shared library path (scrfd backend)")
	rootCmd.Flags().Float32Var(&opts.ScoreThreshold, "score-threshold", 0, "Detection confidence threshold (0 = backend default)")
	rootCmd.Flags().Float32Var(&opts.NMSThreshold, "nms-threshold", 0, "Non-maximum suppression IoU threshold (0 = backend default)")

	rootCmd.MarkFlagRequired("input")
	rootCmd.MarkFlagRequired("output")
	rootCmd.MarkFlagRequired("model")
}

func run(opts Options) error {
	detector, closeDetector, err := newDetector(opts)
	if err != nil {
		return err
	}
	defer closeDetector()

	batch, err := util.LoadDirectoryImages(opts.InputDir)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		logrus.Warnf("no supported images in %s, nothing to do", opts.InputDir)
		return nil
	}
	logrus.Infof("loaded %d images from %s", len(batch), opts.InputDir)

	imgs := make([]image.Image, len(batch))
	for i, entry := range batch {
		imgs[i] = entry.Image
	}

	aligned, err := align.Align(detector, imgs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return err
	}
	for i, img := range aligned {
		outPath := filepath.Join(opts.OutputDir, filepath.Base(batch[i].Path))
		if err := writeImage(outPath, img, batch[i].Format); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"source": batch[i].Path,
			"output": outPath,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		}).Info("aligned")
	}
	return nil
}

func newDetector(opts Options) (faces.Detector, func(), error) {
	switch opts.Backend {
	case "yunet":
		d, err := faces.NewYuNet(faces.YuNetConfig{
			ModelPath:      opts.ModelPath,
			ScoreThreshold: opts.ScoreThreshold,
			NMSThreshold:   opts.NMSThreshold,
		})
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close() }, nil
	case "scrfd":
		d, err := faces.NewSCRFD(faces.SCRFDConfig{
			ModelPath:      opts.ModelPath,
			LibraryPath:    opts.LibraryPath,
			ScoreThreshold: opts.ScoreThreshold,
			NMSThreshold:   opts.NMSThreshold,
		})
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown backend %q (want yunet or scrfd)", opts.Backend)
	}
}

func writeImage(path string, img image.Image, format images.ImageFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return images.Encode(f, img, format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("alignment failed")
	}
}
