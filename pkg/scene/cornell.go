package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// NewCornellScene creates a Cornell-style box lit by one point light, with a mirrored
// sphere and a sphere bouncing up and down. It frames well with the default camera.
func NewCornellScene() *Scene {
	s := NewScene()
	s.Width = 400
	s.Height = 400
	s.AntialiasLevel = 2
	s.MaxDepth = 3

	white := geometry.Surface{
		Diffuse:   core.NewVec3(0.73, 0.73, 0.73),
		Specular:  core.NewVec3(0.1, 0.1, 0.1),
		Shininess: 10,
	}
	red := geometry.Surface{
		Diffuse:   core.NewVec3(0.65, 0.05, 0.05),
		Specular:  core.NewVec3(0.1, 0.1, 0.1),
		Shininess: 10,
	}
	green := geometry.Surface{
		Diffuse:   core.NewVec3(0.12, 0.45, 0.15),
		Specular:  core.NewVec3(0.1, 0.1, 0.1),
		Shininess: 10,
	}
	mirror := geometry.Surface{
		Diffuse:      core.NewVec3(0.2, 0.2, 0.25),
		Specular:     core.NewVec3(1, 1, 1),
		Shininess:    80,
		Reflectivity: 0.6,
	}
	blue := geometry.Surface{
		Diffuse:   core.NewVec3(0.2, 0.3, 0.8),
		Specular:  core.NewVec3(0.8, 0.8, 0.8),
		Shininess: 40,
	}

	// Box spans [-100,100] on every axis, open towards the camera
	const h = 100.0

	// Floor - XZ plane at y=-h
	floor := geometry.NewQuad(
		core.NewVec3(-h, -h, -h),
		core.NewVec3(h, -h, -h),
		core.NewVec3(-h, -h, h),
		white,
	)

	// Ceiling - XZ plane at y=h
	ceiling := geometry.NewQuad(
		core.NewVec3(-h, h, -h),
		core.NewVec3(h, h, -h),
		core.NewVec3(-h, h, h),
		white,
	)

	// Back wall - XY plane at z=h
	backWall := geometry.NewQuad(
		core.NewVec3(-h, -h, h),
		core.NewVec3(h, -h, h),
		core.NewVec3(-h, h, h),
		white,
	)

	// Left wall (red) - YZ plane at x=-h
	leftWall := geometry.NewQuad(
		core.NewVec3(-h, -h, -h),
		core.NewVec3(-h, -h, h),
		core.NewVec3(-h, h, -h),
		red,
	)

	// Right wall (green) - YZ plane at x=h
	rightWall := geometry.NewQuad(
		core.NewVec3(h, -h, -h),
		core.NewVec3(h, -h, h),
		core.NewVec3(h, h, -h),
		green,
	)

	mirrorSphere := geometry.NewSphere(core.NewVec3(-40, -60, 30), 40, mirror)

	bouncing := geometry.NewSphere(core.NewVec3(45, -70, -20), 30, blue)
	bouncing.Motion = geometry.NewMotion(core.NewVec3(0, 1, 0), 80, 4)

	light := geometry.NewLight(
		core.NewVec3(0, 90, 0),
		core.NewVec3(1, 1, 1),
		core.NewVec3(1, 1, 1),
	)

	s.Add(floor, ceiling, backWall, leftWall, rightWall, mirrorSphere, bouncing, light)
	return s
}
