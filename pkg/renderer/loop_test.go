package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func newLoopRaytracer(t *testing.T) *Raytracer {
	t.Helper()
	rt := newTestRaytracer(t, 2)
	s := scene.NewScene()
	s.Width, s.Height = 6, 4
	s.Background = core.NewVec3(0.2, 0.4, 0.6)
	s.Add(geometry.NewSphere(core.Vec3{}, 1, geometry.Surface{}))
	rt.SetScene(s)
	return rt
}

func TestRenderLoop_MaxFrames(t *testing.T) {
	rt := newLoopRaytracer(t)
	fx := NewFrameExchange(6, 4)
	loop := NewRenderLoop(rt, fx, &testLogger{})

	var frames []int
	loop.OnFrame(func(stats RenderStats, frame []byte) error {
		frames = append(frames, stats.Frame)
		if len(frame) != 6*4*3 {
			t.Errorf("Handler got %d bytes, want %d", len(frame), 6*4*3)
		}
		return nil
	})

	if err := loop.Run(context.Background(), 3); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(frames) != 3 || frames[0] != 1 || frames[2] != 3 {
		t.Errorf("Handler saw frames %v, want [1 2 3]", frames)
	}

	// Nobody consumed, so only the first frame was published
	if loop.Published() != 1 || loop.Dropped() != 2 {
		t.Errorf("Published/Dropped = %d/%d, want 1/2", loop.Published(), loop.Dropped())
	}

	dst := make([]byte, 6*4*3)
	stats, ok := fx.TryTake(dst)
	if !ok {
		t.Fatal("Expected a ready frame")
	}
	if stats.Frame != 1 {
		t.Errorf("Ready frame is %d, want 1", stats.Frame)
	}
	if dst[0] != 51 || dst[1] != 102 || dst[2] != 153 {
		t.Errorf("First pixel = %v, want background (51,102,153)", dst[:3])
	}
}

func TestRenderLoop_StopsBetweenFrames(t *testing.T) {
	rt := newLoopRaytracer(t)
	loop := NewRenderLoop(rt, NewFrameExchange(6, 4), &testLogger{})

	rendered := 0
	loop.OnFrame(func(stats RenderStats, frame []byte) error {
		rendered++
		if rendered == 2 {
			loop.Stop()
		}
		return nil
	})

	if err := loop.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rendered != 2 {
		t.Errorf("Rendered %d frames, want 2", rendered)
	}
}

func TestRenderLoop_ContextCancel(t *testing.T) {
	rt := newLoopRaytracer(t)
	loop := NewRenderLoop(rt, NewFrameExchange(6, 4), &testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	rendered := 0
	loop.OnFrame(func(stats RenderStats, frame []byte) error {
		rendered++
		// The frame in flight still completes
		cancel()
		return nil
	})

	if err := loop.Run(ctx, 0); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rendered != 1 {
		t.Errorf("Rendered %d frames, want 1", rendered)
	}
	if loop.Published() != 1 {
		t.Errorf("Published = %d, want 1", loop.Published())
	}
}

func TestRenderLoop_HandlerError(t *testing.T) {
	rt := newLoopRaytracer(t)
	loop := NewRenderLoop(rt, NewFrameExchange(6, 4), &testLogger{})

	errUpload := errors.New("upload failed")
	loop.OnFrame(func(stats RenderStats, frame []byte) error {
		return errUpload
	})

	if err := loop.Run(context.Background(), 5); !errors.Is(err, errUpload) {
		t.Errorf("Run() error = %v, want wrapped handler error", err)
	}
}

func TestRenderLoop_Validation(t *testing.T) {
	empty := newTestRaytracer(t, 1)
	if err := NewRenderLoop(empty, NewFrameExchange(1, 1), nil).Run(context.Background(), 1); !errors.Is(err, ErrNoScene) {
		t.Errorf("Run() without scene error = %v, want ErrNoScene", err)
	}

	rt := newLoopRaytracer(t)
	if err := NewRenderLoop(rt, NewFrameExchange(4, 6), nil).Run(context.Background(), 1); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Run() with mismatched exchange error = %v, want ErrBufferSize", err)
	}
}
