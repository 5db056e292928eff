package util

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pointscale/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the format implied by the file extension.
	Format images.ImageFormat
	// Data is the raw bytes of the image file. It is nil when only paths were listed.
	Data []byte
}

// Image returns the file as an encoded image ready for images.Decode.
func (f ImageFile) Image() images.Image {
	return images.Image{Format: f.Format, Data: f.Data}
}

// ListImageFiles finds every file under dir with a supported image extension.
//
// Arguments:
// - dir: Directory path containing image files.
// - recursive: Whether to descend into subdirectories.
//
// Returns:
// - []ImageFile: Files sorted by path, without their data.
// - error: Error if the directory cannot be walked.
func ListImageFiles(dir string, recursive bool) ([]ImageFile, error) {
	var files []ImageFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if format, ok := images.FormatFromExtension(path); ok {
			files = append(files, ImageFile{Path: path, Format: format})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list images in %s", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// LoadImageFile reads a single image file.
func LoadImageFile(path string) (ImageFile, error) {
	format, ok := images.FormatFromExtension(path)
	if !ok {
		return ImageFile{}, errors.Wrapf(images.ErrUnsupportedFormat, "%s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return ImageFile{Path: path, Format: format, Data: data}, nil
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Arguments:
// - dir: Directory path containing image files.
// - recursive: Whether to descend into subdirectories.
//
// Returns:
// - []ImageFile: Slice of ImageFile sorted by path, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string, recursive bool) ([]ImageFile, error) {
	files, err := ListImageFiles(dir, recursive)
	if err != nil {
		return nil, err
	}

	for i := range files {
		loaded, err := LoadImageFile(files[i].Path)
		if err != nil {
			return nil, err
		}
		files[i] = loaded
	}
	return files, nil
}
