package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

var (
	// ErrNoScene is returned when rendering is requested before a scene has loaded
	ErrNoScene = errors.New("no scene loaded")
	// ErrBufferSize is returned when an output buffer does not match the scene resolution
	ErrBufferSize = errors.New("output buffer size does not match resolution")
	// ErrNoOutputBuffer is returned when a frame is rendered before SetOutputBuffer
	ErrNoOutputBuffer = errors.New("no output buffer set")
)

// Raytracer renders animated frames of a scene into a caller-owned RGB buffer
type Raytracer struct {
	logger core.Logger
	pool   *WorkerPool

	camMu  sync.Mutex
	camera Camera

	// frameMu guards everything below. It is held for a whole frame.
	frameMu      sync.Mutex
	scene        *scene.Scene
	tracer       *tracer
	native       []byte
	nativeWidth  int
	nativeHeight int
	output       []byte
	frame        int
}

// NewRaytracer creates a raytracer with its own worker pool.
// Non-positive worker counts use DefaultWorkerCount.
func NewRaytracer(logger core.Logger, numWorkers int) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	pool := NewWorkerPool(numWorkers)
	pool.Start()

	return &Raytracer{
		logger: logger,
		pool:   pool,
		camera: *NewCamera(),
	}
}

// Close stops the worker pool. The raytracer must not be used afterwards.
func (rt *Raytracer) Close() {
	rt.pool.Stop()
}

// NumWorkers returns the number of parallel row workers
func (rt *Raytracer) NumWorkers() int {
	return rt.pool.GetNumWorkers()
}

// LoadScene replaces the current scene with one parsed from a scene file.
// On failure the raytracer is left without a scene.
func (rt *Raytracer) LoadScene(path string) error {
	s, err := loaders.LoadScene(path)
	if err != nil {
		rt.SetScene(nil)
		rt.logger.Printf("Failed to load scene file %s: %v\n", path, err)
		return fmt.Errorf("load scene: %w", err)
	}

	if err := rt.SetScene(s); err != nil {
		rt.logger.Printf("Failed to load scene file %s: %v\n", path, err)
		return fmt.Errorf("load scene: %w", err)
	}
	rt.logger.Printf("Loaded scene %s: %dx%d, %d shapes, antialias %d, max depth %d\n",
		path, s.Width, s.Height, len(s.Shapes), s.AntialiasLevel, s.MaxDepth)
	return nil
}

// SetScene installs an already constructed scene. The raytracer takes ownership and animates it.
// A nil scene clears the current one. A scene that fails Validate also leaves the raytracer
// without a scene and returns an error wrapping scene.ErrSceneSize.
func (rt *Raytracer) SetScene(s *scene.Scene) error {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	rt.frame = 0
	rt.output = nil

	var err error
	if s != nil {
		err = s.Validate()
	}
	if s == nil || err != nil {
		rt.scene = nil
		rt.tracer = nil
		rt.native = nil
		rt.nativeWidth, rt.nativeHeight = 0, 0
		return err
	}

	s.AntialiasLevel = max(1, s.AntialiasLevel)
	rt.scene = s
	rt.tracer = newTracer(s)
	rt.nativeWidth, rt.nativeHeight = s.NativeResolution()
	rt.native = make([]byte, rt.nativeWidth*rt.nativeHeight*3)
	return nil
}

// GetResolution returns the output resolution, or zeros when no scene is loaded
func (rt *Raytracer) GetResolution() (int, int) {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	if rt.scene == nil {
		return 0, 0
	}
	return rt.scene.Width, rt.scene.Height
}

// SetOutputBuffer hands the raytracer the buffer every frame is written into.
// It must hold exactly width*height*3 bytes for the current scene. The caller keeps ownership.
func (rt *Raytracer) SetOutputBuffer(buf []byte) error {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	if rt.scene == nil {
		return ErrNoScene
	}
	if want := rt.scene.Width * rt.scene.Height * 3; len(buf) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(buf), want)
	}

	rt.output = buf
	return nil
}

// SetCamera sets the camera pose. It may be called while frames are rendering
// and takes effect from the next frame.
func (rt *Raytracer) SetCamera(pos, dir, up core.Vec3) {
	rt.camMu.Lock()
	defer rt.camMu.Unlock()
	rt.camera.SetPose(pos, dir, up)
}

// SetProjection sets focal length and vertical field of view in degrees
func (rt *Raytracer) SetProjection(focal, fovy float64) {
	rt.camMu.Lock()
	defer rt.camMu.Unlock()
	rt.camera.SetProjection(focal, fovy)
}

// MoveCamera translates the camera along its own axes
func (rt *Raytracer) MoveCamera(forward, right, up float64) {
	rt.camMu.Lock()
	defer rt.camMu.Unlock()
	rt.camera.Translate(forward, right, up)
}

// Camera returns a copy of the current camera
func (rt *Raytracer) Camera() Camera {
	rt.camMu.Lock()
	defer rt.camMu.Unlock()
	return rt.camera
}

// RenderFrame advances the animation one step, traces every native sample
// and downscales into the output buffer.
func (rt *Raytracer) RenderFrame() (RenderStats, error) {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	if rt.scene == nil {
		return RenderStats{}, ErrNoScene
	}
	if rt.output == nil {
		return RenderStats{}, ErrNoOutputBuffer
	}

	start := time.Now()
	camera := rt.Camera()

	rt.scene.Update()
	rt.frame++

	job := &frameJob{
		tracer:       rt.tracer,
		plane:        camera.imagePlane(rt.nativeWidth, rt.nativeHeight),
		maxDepth:     rt.scene.MaxDepth,
		native:       rt.native,
		nativeWidth:  rt.nativeWidth,
		nativeHeight: rt.nativeHeight,
		output:       rt.output,
		width:        rt.scene.Width,
		height:       rt.scene.Height,
		level:        rt.scene.AntialiasLevel,
	}

	totalSamples := 0
	for _, result := range rt.pool.Execute(rowTasks(job, phaseTrace, job.nativeHeight)) {
		totalSamples += result.Samples
	}
	rt.pool.Execute(rowTasks(job, phaseDownscale, job.height))

	return RenderStats{
		Frame:        rt.frame,
		Width:        job.width,
		Height:       job.height,
		NativeWidth:  job.nativeWidth,
		NativeHeight: job.nativeHeight,
		TotalSamples: totalSamples,
		Duration:     time.Since(start),
	}, nil
}

// rowTasks creates one task per row for the given phase
func rowTasks(job *frameJob, phase rowPhase, rows int) []RowTask {
	tasks := make([]RowTask, rows)
	for row := 0; row < rows; row++ {
		tasks[row] = RowTask{
			Job:    job,
			Phase:  phase,
			Row:    row,
			TaskID: row,
		}
	}
	return tasks
}
