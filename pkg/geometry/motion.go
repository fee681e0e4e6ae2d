package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Motion describes linear ping-pong animation along Direction.
// The offset travels from 0 to Distance and back, Speed units per frame.
type Motion struct {
	Direction core.Vec3 // Unit direction of travel
	Distance  float64   // Maximum travel distance
	Speed     float64   // Distance per frame

	offset   float64
	backward bool
}

// NewMotion creates a motion with a normalized direction
func NewMotion(direction core.Vec3, distance, speed float64) Motion {
	return Motion{
		Direction: direction.Normalize(),
		Distance:  distance,
		Speed:     speed,
	}
}

// Offset returns the current signed travel along Direction
func (m *Motion) Offset() float64 {
	return m.offset
}

// Stationary reports whether the motion never moves anything
func (m *Motion) Stationary() bool {
	return m.Distance == 0 || m.Speed == 0 || m.Direction.IsZero()
}

// step advances the offset by one frame and returns the translation to apply.
// Direction reverses once the offset reaches either end of its range.
func (m *Motion) step() (core.Vec3, bool) {
	if m.Stationary() {
		return core.Vec3{}, false
	}

	if m.backward {
		m.offset -= m.Speed
		if m.offset <= 0 {
			m.backward = false
		}
		return m.Direction.Multiply(-m.Speed), true
	}

	m.offset += m.Speed
	if m.offset >= m.Distance {
		m.backward = true
	}
	return m.Direction.Multiply(m.Speed), true
}
