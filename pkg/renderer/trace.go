package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// tracer holds the read-only view of a scene used while tracing one frame.
// Workers share it without synchronization.
type tracer struct {
	occluders  []*geometry.Shape
	lights     []*geometry.Shape
	background core.Vec3
}

func newTracer(s *scene.Scene) *tracer {
	occluders, lights := s.Partition()
	return &tracer{
		occluders:  occluders,
		lights:     lights,
		background: s.Background,
	}
}

// nearestHit returns the closest occluder along the ray, skipping self
func (t *tracer) nearestHit(ray core.Ray, self *geometry.Shape) (*geometry.Shape, float64, bool) {
	var closest *geometry.Shape
	closestT := math.Inf(1)

	for _, shape := range t.occluders {
		if shape == self {
			continue
		}
		if hitT, ok := shape.Hit(ray); ok && hitT < closestT {
			closest = shape
			closestT = hitT
		}
	}

	return closest, closestT, closest != nil
}

// lightVisible reports whether nothing but self lies between p and the light
func (t *tracer) lightVisible(light *geometry.Shape, p core.Vec3, self *geometry.Shape) bool {
	toLight := light.Center.Subtract(p)
	dist := toLight.Length()
	ray := core.NewRay(p, toLight.Normalize())

	for _, shape := range t.occluders {
		if shape == self {
			continue
		}
		if hitT, ok := shape.Hit(ray); ok && hitT < dist {
			return false
		}
	}
	return true
}

// visibleLights returns the lights that illuminate p
func (t *tracer) visibleLights(p core.Vec3, self *geometry.Shape) []*geometry.Shape {
	visible := make([]*geometry.Shape, 0, len(t.lights))
	for _, light := range t.lights {
		if t.lightVisible(light, p, self) {
			visible = append(visible, light)
		}
	}
	return visible
}

// phong evaluates one light's diffuse and specular contribution at p.
// n is the unit surface normal and v the unit direction towards the viewer.
func phong(n, v, p core.Vec3, light *geometry.Shape, surface *geometry.Surface) core.Vec3 {
	l := light.Center.Subtract(p).Normalize()
	r := l.Negate().Reflect(n).Normalize()

	lambert := math.Max(l.Dot(n), 0)
	diffuse := light.Diffuse.MultiplyVec(surface.Diffuse).Multiply(lambert)
	if lambert <= 0 {
		return diffuse
	}

	highlight := math.Pow(math.Max(r.Dot(v), 0), surface.Shininess)
	specular := light.Specular.MultiplyVec(surface.Specular).Multiply(highlight)
	return diffuse.Add(specular)
}

// shade returns the direct illumination at a hit point without any reflection
func (t *tracer) shade(hit *geometry.Shape, p, n, v core.Vec3) core.Vec3 {
	color := core.Vec3{}
	for _, light := range t.visibleLights(p, hit) {
		color = color.Add(phong(n, v, p, light, &hit.Surface))
	}
	return color
}

// trace returns the color seen along ray, following up to depth mirror bounces
func (t *tracer) trace(ray core.Ray, self *geometry.Shape, depth int) core.Vec3 {
	hit, hitT, ok := t.nearestHit(ray, self)
	if !ok {
		return t.background
	}

	p := ray.At(hitT)
	v := ray.Origin.Subtract(p).Normalize()
	n := hit.ShadingNormal(p, v)

	direct := t.shade(hit, p, n, v)

	reflectivity := hit.Reflectivity
	if depth <= 0 || reflectivity == 0 {
		return direct
	}

	reflected := core.NewRay(p, ray.Direction.Reflect(n).Normalize())
	bounce := t.trace(reflected, hit, depth-1)

	return direct.Multiply(1 - reflectivity).Add(bounce.Multiply(reflectivity))
}
