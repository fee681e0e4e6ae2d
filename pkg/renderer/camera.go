package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Camera defaults and projection limits
const (
	DefaultFocal = 0.1
	DefaultFovY  = 90.0

	minFocal = 0.1
	minFovY  = 0.1
	maxFovY  = 179.5
)

// Camera is a pinhole camera with an explicit image plane at the focal distance
type Camera struct {
	Position  core.Vec3 // Eye position
	Direction core.Vec3 // Unit view direction
	Up        core.Vec3 // Unit up vector, also the image plane's vertical axis
	Focal     float64   // Distance from the eye to the image plane
	FovY      float64   // Vertical field of view in degrees
}

// NewCamera creates a camera at (0,0,-250) looking down +Z
func NewCamera() *Camera {
	return &Camera{
		Position:  core.NewVec3(0, 0, -250),
		Direction: core.NewVec3(0, 0, 1),
		Up:        core.NewVec3(0, 1, 0),
		Focal:     DefaultFocal,
		FovY:      DefaultFovY,
	}
}

// SetPose sets the camera position and orientation. Direction and up are normalized.
func (c *Camera) SetPose(pos, dir, up core.Vec3) {
	c.Position = pos
	c.Direction = dir.Normalize()
	c.Up = up.Normalize()
}

// SetProjection sets focal length and vertical field of view, clamping degenerate values
func (c *Camera) SetProjection(focal, fovy float64) {
	c.Focal = focal
	if c.Focal <= 0 {
		c.Focal = minFocal
	}

	c.FovY = fovy
	if c.FovY <= 0 {
		c.FovY = minFovY
	} else if c.FovY >= 180 {
		c.FovY = maxFovY
	}
}

// imagePlane is the world-space sampling grid for one frame
type imagePlane struct {
	origin    core.Vec3
	topLeft   core.Vec3 // Position of sample (0,0)
	stepRight core.Vec3 // Offset between horizontally adjacent samples
	stepDown  core.Vec3 // Offset between vertically adjacent samples
}

// imagePlane lays out a width x height sample grid on the camera's image plane
func (c *Camera) imagePlane(width, height int) imagePlane {
	center := c.Position.Add(c.Direction.Multiply(c.Focal))
	planeHeight := 2 * c.Focal * math.Tan(mgl64.DegToRad(c.FovY/2))
	planeWidth := planeHeight * float64(width) / float64(height)

	right := c.Up.Cross(c.Direction).Normalize()
	topLeft := center.
		Subtract(right.Multiply(planeWidth / 2)).
		Add(c.Up.Multiply(planeHeight / 2))

	return imagePlane{
		origin:    c.Position,
		topLeft:   topLeft,
		stepRight: right.Multiply(planeWidth / float64(width)),
		stepDown:  c.Up.Multiply(-planeHeight / float64(height)),
	}
}

// rayThrough returns the primary ray through the sample at (row, col)
func (p imagePlane) rayThrough(row, col int) core.Ray {
	sample := p.topLeft.
		Add(p.stepRight.Multiply(float64(col))).
		Add(p.stepDown.Multiply(float64(row)))
	return core.NewRay(p.origin, sample.Subtract(p.origin).Normalize())
}

// Translate moves the camera along its own axes: forward along Direction,
// right along Up x Direction and up along Up
func (c *Camera) Translate(forward, right, up float64) {
	rightAxis := c.Up.Cross(c.Direction).Normalize()
	c.Position = c.Position.
		Add(c.Direction.Multiply(forward)).
		Add(rightAxis.Multiply(right)).
		Add(c.Up.Multiply(up))
}
