package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// Default render settings used when a scene file does not override them
const (
	DefaultWidth          = 800
	DefaultHeight         = 800
	DefaultMaxDepth       = 1
	DefaultAntialiasLevel = 1

	// MaxNativePixels bounds the supersampled image (width*level x height*level)
	MaxNativePixels = 1 << 26
)

// ErrSceneSize is returned for scenes whose resolution cannot be rendered
var ErrSceneSize = errors.New("invalid scene size")

// Scene contains all the elements needed for rendering.
// The scene owns its shapes; occluder and light lists handed out by Partition are views into them.
type Scene struct {
	Background     core.Vec3         // Color returned for rays that hit nothing
	Width          int               // Output width in pixels
	Height         int               // Output height in pixels
	AntialiasLevel int               // Supersamples per axis per output pixel
	MaxDepth       int               // Maximum reflection bounces
	Shapes         []*geometry.Shape // All shapes, in authored order
}

// NewScene creates an empty scene with default settings
func NewScene() *Scene {
	return &Scene{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		AntialiasLevel: DefaultAntialiasLevel,
		MaxDepth:       DefaultMaxDepth,
		Shapes:         make([]*geometry.Shape, 0),
	}
}

// Add appends shapes to the scene
func (s *Scene) Add(shapes ...*geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// Update advances every shape one animation step
func (s *Scene) Update() {
	for _, shape := range s.Shapes {
		shape.Move()
	}
}

// Partition splits the shapes into occluders (spheres, quads) and point lights,
// preserving authored order within each list.
func (s *Scene) Partition() (occluders, lights []*geometry.Shape) {
	for _, shape := range s.Shapes {
		switch {
		case shape.Kind == geometry.KindLight:
			lights = append(lights, shape)
		case shape.IsOccluder():
			occluders = append(occluders, shape)
		}
	}
	return occluders, lights
}

// NativeResolution returns the supersampled resolution the tracer renders at
func (s *Scene) NativeResolution() (int, int) {
	level := max(1, s.AntialiasLevel)
	return s.Width * level, s.Height * level
}

// Validate checks that the resolution is positive and the supersampled image fits
// in MaxNativePixels. Antialias levels below 1 count as 1.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrSceneSize, s.Width, s.Height)
	}

	level := max(1, s.AntialiasLevel)
	// Bound each factor first so the products below cannot overflow
	if s.Width > MaxNativePixels || s.Height > MaxNativePixels || level > MaxNativePixels {
		return fmt.Errorf("%w: %dx%d at antialias %d exceeds %d samples", ErrSceneSize, s.Width, s.Height, level, MaxNativePixels)
	}
	nativeWidth, nativeHeight := s.Width*level, s.Height*level
	if nativeWidth > MaxNativePixels/nativeHeight {
		return fmt.Errorf("%w: %dx%d at antialias %d exceeds %d samples", ErrSceneSize, s.Width, s.Height, level, MaxNativePixels)
	}
	return nil
}

// GetPrimitiveCount returns the number of occluding shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		if shape.IsOccluder() {
			count++
		}
	}
	return count
}
