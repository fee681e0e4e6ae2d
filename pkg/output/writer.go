package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// FrameWriter saves numbered frames as PNG files in a directory
type FrameWriter struct {
	dir string
}

// NewFrameWriter creates the output directory if needed
func NewFrameWriter(dir string) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FrameWriter{dir: dir}, nil
}

// Dir returns the output directory
func (fw *FrameWriter) Dir() string {
	return fw.dir
}

// FrameName returns the file name used for a frame number
func FrameName(frame int) string {
	return fmt.Sprintf("frame_%04d.png", frame)
}

// WriteFrame saves img as the given frame and returns the file path
func (fw *FrameWriter) WriteFrame(frame int, img image.Image) (string, error) {
	path := filepath.Join(fw.dir, FrameName(frame))
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save frame %d: %w", frame, err)
	}
	return path, nil
}
