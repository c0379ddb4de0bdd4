// Package util - filesystem helpers for batch processing.
package util

import (
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facealign/images"
)

// ImageFile represents one decoded image loaded from disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the encoding the file was stored in.
	Format images.ImageFormat
	// Image is the decoded pixel data.
	Image image.Image
}

// LoadDirectoryImages reads and decodes every supported image file in a
// directory, in filename order. Filename order defines the batch order all
// downstream alignment output follows.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: One entry per supported file, sorted by path.
//   - error: Error if the directory cannot be read or a file fails to decode.
func LoadDirectoryImages(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", dir)
	}

	var loaded []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if _, ok := images.FormatForExtension(filepath.Ext(file.Name())); !ok {
			continue
		}

		path := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading %s", path)
		}
		img, format, decErr := images.Decode(data)
		if decErr != nil {
			return nil, errors.Wrapf(decErr, "decoding %s", path)
		}
		loaded = append(loaded, ImageFile{
			Path:   path,
			Format: format,
			Image:  img,
		})
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Path < loaded[j].Path
	})

	return loaded, nil
}
