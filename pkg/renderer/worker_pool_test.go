package renderer

import (
	"runtime"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func TestNewWorkerPool_WorkerCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"default", 0, DefaultWorkerCount()},
		{"negative", -4, DefaultWorkerCount()},
		{"one", 1, 1},
		{"capped at cpu count", runtime.NumCPU() + 8, runtime.NumCPU()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.requested)
			if got := wp.GetNumWorkers(); got != tt.expected {
				t.Errorf("GetNumWorkers() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	count := DefaultWorkerCount()
	if count < 1 {
		t.Errorf("DefaultWorkerCount() = %d, want at least 1", count)
	}
	if count > runtime.NumCPU() {
		t.Errorf("DefaultWorkerCount() = %d exceeds NumCPU %d", count, runtime.NumCPU())
	}
}

func TestWorkerPool_Execute(t *testing.T) {
	s := scene.NewScene()
	s.Background = core.NewVec3(1, 0, 0.5)

	width, height := 7, 13
	job := &frameJob{
		tracer:       newTracer(s),
		plane:        NewCamera().imagePlane(width, height),
		native:       make([]byte, width*height*3),
		nativeWidth:  width,
		nativeHeight: height,
		output:       make([]byte, width*height*3),
		width:        width,
		height:       height,
		level:        1,
	}

	wp := NewWorkerPool(3)
	wp.Start()
	defer wp.Stop()

	results := wp.Execute(rowTasks(job, phaseTrace, height))
	if len(results) != height {
		t.Fatalf("Expected %d results, got %d", height, len(results))
	}
	for i, result := range results {
		if result.TaskID != i {
			t.Errorf("Result %d has TaskID %d", i, result.TaskID)
		}
		if result.Samples != width {
			t.Errorf("Row %d traced %d samples, want %d", i, result.Samples, width)
		}
	}

	for i := 0; i < len(job.native); i += 3 {
		if job.native[i] != 255 || job.native[i+1] != 0 || job.native[i+2] != 127 {
			t.Fatalf("Sample %d = %v, want background", i/3, job.native[i:i+3])
		}
	}

	// The pool is reusable across phases and frames
	wp.Execute(rowTasks(job, phaseDownscale, height))
	for i := range job.output {
		if job.output[i] != job.native[i] {
			t.Fatalf("Output byte %d = %d, want %d", i, job.output[i], job.native[i])
		}
	}
}

func TestWorkerPool_StopTwice(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()
	wp.Stop()
	wp.Stop()
}
