package renderer

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// InspectResult describes what the primary ray through an output pixel sees
type InspectResult struct {
	Hit           bool      `json:"hit"`
	ShapeIndex    int       `json:"shapeIndex"` // Index into the scene's shapes, -1 on a miss
	Kind          string    `json:"kind,omitempty"`
	Distance      float64   `json:"distance"`
	Point         core.Vec3 `json:"point"`
	Normal        core.Vec3 `json:"normal"`
	Reflectivity  float64   `json:"reflectivity"`
	LightsVisible int       `json:"lightsVisible"`
	Color         core.Vec3 `json:"color"` // Unclamped traced color
}

// Inspect traces the first native sample of output pixel (x, y) against the current
// animation state without advancing it
func (rt *Raytracer) Inspect(x, y int) (InspectResult, error) {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	if rt.scene == nil {
		return InspectResult{}, ErrNoScene
	}
	if x < 0 || y < 0 || x >= rt.scene.Width || y >= rt.scene.Height {
		return InspectResult{}, fmt.Errorf("pixel (%d,%d) outside %dx%d image", x, y, rt.scene.Width, rt.scene.Height)
	}

	camera := rt.Camera()
	plane := camera.imagePlane(rt.nativeWidth, rt.nativeHeight)
	level := rt.scene.AntialiasLevel
	ray := plane.rayThrough(y*level, x*level)

	result := InspectResult{
		ShapeIndex: -1,
		Color:      rt.tracer.trace(ray, nil, rt.scene.MaxDepth),
	}

	hit, hitT, ok := rt.tracer.nearestHit(ray, nil)
	if !ok {
		return result, nil
	}

	p := ray.At(hitT)
	v := ray.Origin.Subtract(p).Normalize()

	result.Hit = true
	result.ShapeIndex = rt.shapeIndex(hit)
	result.Kind = hit.Kind.String()
	result.Distance = hitT
	result.Point = p
	result.Normal = hit.ShadingNormal(p, v)
	result.Reflectivity = hit.Reflectivity
	result.LightsVisible = len(rt.tracer.visibleLights(p, hit))
	return result, nil
}

func (rt *Raytracer) shapeIndex(shape *geometry.Shape) int {
	for i, s := range rt.scene.Shapes {
		if s == shape {
			return i
		}
	}
	return -1
}
