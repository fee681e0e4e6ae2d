package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// hitSphere intersects the ray with the sphere using the projection method.
// The ray direction is expected to be unit length.
func (s *Shape) hitSphere(ray core.Ray) (float64, bool) {
	// Vector from ray origin to sphere center, projected onto the ray
	oc := s.Center.Subtract(ray.Origin)
	op := ray.Direction.Dot(oc)
	if op < 0 {
		return 0, false
	}

	// Squared distance from the center to the ray
	d2 := oc.Dot(oc) - op*op
	r2 := s.Radius * s.Radius
	if d2 > r2 {
		return 0, false
	}

	discriminant := r2 - d2
	if discriminant < core.Epsilon {
		// Tangent
		return op, true
	}

	// Nearer root first, farther root when the origin is inside
	half := math.Sqrt(discriminant)
	t := op - half
	if t < 0 {
		t = op + half
	}
	return t, true
}
