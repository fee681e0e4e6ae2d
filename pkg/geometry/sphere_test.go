package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestSphere_Hit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 2.0, Surface{})

	tests := []struct {
		name         string
		rayOrigin    core.Vec3
		rayDirection core.Vec3
		expectHit    bool
		expectedT    float64
	}{
		{
			name:         "straight at center",
			rayOrigin:    core.NewVec3(0, 0, -10),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    true,
			expectedT:    8.0, // distance to center minus radius
		},
		{
			name:         "tangent hit returns projection distance",
			rayOrigin:    core.NewVec3(0, 2, -10),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    true,
			expectedT:    10.0,
		},
		{
			name:         "perpendicular offset greater than radius",
			rayOrigin:    core.NewVec3(0, 3, -10),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    false,
		},
		{
			name:         "sphere behind origin",
			rayOrigin:    core.NewVec3(0, 0, -10),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    false,
		},
		{
			name:         "origin inside uses farther root",
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(1, 0, 0),
			expectHit:    true,
			expectedT:    2.0,
		},
		{
			name:         "diagonal ray",
			rayOrigin:    core.NewVec3(-10, -10, 0),
			rayDirection: core.NewVec3(1, 1, 0).Normalize(),
			expectHit:    true,
			expectedT:    math.Sqrt(200) - 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			dist, isHit := sphere.Hit(ray)

			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got hit=%t (t=%f)", tt.expectHit, isHit, dist)
			}
			if tt.expectHit && math.Abs(dist-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, dist)
			}
		})
	}
}

func TestSphere_ShadingNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 1, 1), 2.0, Surface{})

	n := sphere.ShadingNormal(core.NewVec3(1, 3, 1), core.NewVec3(0, 1, 0))
	if n.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("Expected normal (0,1,0), got %v", n)
	}

	// Sphere normals are never flipped towards the viewer
	n = sphere.ShadingNormal(core.NewVec3(1, 3, 1), core.NewVec3(0, -1, 0))
	if n.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("Expected outward normal (0,1,0), got %v", n)
	}
}

func TestSphere_ZeroRadius(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 5), 0, Surface{})

	// A ray straight through a degenerate sphere touches it at the center
	dist, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)))
	if !isHit {
		t.Fatal("Expected tangent hit on zero-radius sphere")
	}
	if dist != 5 {
		t.Errorf("Expected t=5, got %f", dist)
	}

	if _, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1))); isHit {
		t.Error("Expected miss for offset ray")
	}
}
