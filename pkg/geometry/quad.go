package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// hitQuad intersects the ray with the quad's plane and accepts the hit when the
// angles subtended by consecutive edges at the hit point sum to 2π.
// The angle sum is unreliable when the hit point lies on an edge or vertex.
func (s *Shape) hitQuad(ray core.Ray) (float64, bool) {
	denominator := ray.Direction.Dot(s.Normal)
	if denominator == 0 {
		return 0, false
	}

	t := s.V1.Subtract(ray.Origin).Dot(s.Normal) / denominator
	if t < core.Epsilon {
		return 0, false
	}

	p := ray.At(t)
	sum := subtendedAngle(p, s.V1, s.V2) +
		subtendedAngle(p, s.V2, s.V4) +
		subtendedAngle(p, s.V4, s.V3) +
		subtendedAngle(p, s.V3, s.V1)

	if math.Abs(sum-2*math.Pi) < core.Epsilon {
		return t, true
	}
	return 0, false
}

// subtendedAngle returns the angle at p between the directions to a and b
func subtendedAngle(p, a, b core.Vec3) float64 {
	return math.Acos(a.Subtract(p).Normalize().Dot(b.Subtract(p).Normalize()))
}
