package output

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ToImage converts a packed top-down RGB buffer into an opaque image
func ToImage(rgb []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(rgb) != width*height*3 {
		return nil, fmt.Errorf("buffer has %d bytes, want %d for %dx%d RGB", len(rgb), width*height*3, width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			img.SetNRGBA(x, y, color.NRGBA{R: rgb[i], G: rgb[i+1], B: rgb[i+2], A: 255})
		}
	}
	return img, nil
}

// EncodePNG encodes an image as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales an image down to maxWidth pixels wide, keeping its aspect ratio.
// Images already narrow enough are returned unchanged.
func Thumbnail(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return resize.Resize(uint(maxWidth), 0, img, resize.Bilinear)
}

// ExpandRGBA writes packed RGB pixels into an RGBA buffer with full alpha.
// dst must hold len(rgb)/3*4 bytes.
func ExpandRGBA(dst, rgb []byte) {
	for i, j := 0, 0; i+2 < len(rgb) && j+3 < len(dst); i, j = i+3, j+4 {
		dst[j] = rgb[i]
		dst[j+1] = rgb[i+1]
		dst[j+2] = rgb[i+2]
		dst[j+3] = 255
	}
}
