package geometry

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Kind identifies which variant a Shape is
type Kind int

const (
	KindLight Kind = iota + 1
	KindSphere
	KindQuad
)

// String returns the lower-case name of the shape kind
func (k Kind) String() string {
	switch k {
	case KindLight:
		return "light"
	case KindSphere:
		return "sphere"
	case KindQuad:
		return "quad"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Surface holds the Phong material attributes shared by every shape.
// Lights carry them too but only Diffuse and Specular are read, as the light's intensity.
type Surface struct {
	Diffuse      core.Vec3 // Diffuse color
	Specular     core.Vec3 // Specular color
	Shininess    float64   // Phong exponent
	Reflectivity float64   // Mirror contribution in [0,1]
}

// Shape is a tagged variant over lights, spheres and quads.
// Variant-specific fields are only meaningful for their Kind.
type Shape struct {
	Kind   Kind
	Center core.Vec3
	Surface
	Motion Motion

	// Sphere
	Radius float64

	// Quad: V1..V3 are authored, V4 and Normal are derived when V3 is set
	V1, V2, V3, V4 core.Vec3
	Normal         core.Vec3
}

// NewLight creates a point light at center with the given diffuse and specular intensity
func NewLight(center, diffuse, specular core.Vec3) *Shape {
	return &Shape{
		Kind:    KindLight,
		Center:  center,
		Surface: Surface{Diffuse: diffuse, Specular: specular},
	}
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, surface Surface) *Shape {
	return &Shape{
		Kind:    KindSphere,
		Center:  center,
		Radius:  radius,
		Surface: surface,
	}
}

// NewQuad creates a parallelogram from three vertices. The fourth vertex is v3 + (v2 - v1).
func NewQuad(v1, v2, v3 core.Vec3, surface Surface) *Shape {
	q := &Shape{
		Kind:    KindQuad,
		Normal:  core.NewVec3(1, 0, 0),
		Surface: surface,
	}
	q.SetV1(v1)
	q.SetV2(v2)
	q.SetV3(v3)
	return q
}

// NewEmpty returns a shape of the given kind with zeroed attributes, ready to be filled in
// field by field the way the scene loader does it.
func NewEmpty(kind Kind) *Shape {
	s := &Shape{Kind: kind}
	if kind == KindQuad {
		s.Normal = core.NewVec3(1, 0, 0)
	}
	return s
}

// IsOccluder reports whether the shape can block rays
func (s *Shape) IsOccluder() bool {
	return s.Kind == KindSphere || s.Kind == KindQuad
}

// SetV1 sets the first quad vertex
func (s *Shape) SetV1(v core.Vec3) {
	s.V1 = v
}

// SetV2 sets the second quad vertex
func (s *Shape) SetV2(v core.Vec3) {
	s.V2 = v
}

// SetV3 sets the third quad vertex and derives V4, Center and Normal.
// V1 and V2 must already be set.
func (s *Shape) SetV3(v core.Vec3) {
	s.V3 = v
	s.V4 = s.V3.Add(s.V2.Subtract(s.V1))
	s.Center = s.V2.Add(s.V3).Multiply(0.5)
	s.Normal = s.V2.Subtract(s.V1).Cross(s.V3.Subtract(s.V1)).Normalize()
}

// Hit returns the smallest positive distance along the ray at which the shape is hit.
// Lights are never hit.
func (s *Shape) Hit(ray core.Ray) (float64, bool) {
	switch s.Kind {
	case KindSphere:
		return s.hitSphere(ray)
	case KindQuad:
		return s.hitQuad(ray)
	default:
		return 0, false
	}
}

// ShadingNormal returns the unit normal at p as seen from viewDir (pointing from p towards the viewer).
// Quad normals are flipped to face the viewer.
func (s *Shape) ShadingNormal(p, viewDir core.Vec3) core.Vec3 {
	switch s.Kind {
	case KindSphere:
		return p.Subtract(s.Center).Normalize()
	case KindQuad:
		if s.Normal.Dot(viewDir) < 0 {
			return s.Normal.Negate()
		}
		return s.Normal
	default:
		return core.Vec3{}
	}
}

// Move advances the shape one animation step
func (s *Shape) Move() {
	delta, moved := s.Motion.step()
	if !moved {
		return
	}

	s.Center = s.Center.Add(delta)
	if s.Kind == KindQuad {
		// Pure translation, the normal is unchanged
		s.V1 = s.V1.Add(delta)
		s.V2 = s.V2.Add(delta)
		s.V3 = s.V3.Add(delta)
		s.V4 = s.V4.Add(delta)
	}
}
