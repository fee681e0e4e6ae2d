package renderer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// FrameHandler is called on the render goroutine after each frame with the finished output
// buffer. The buffer is reused for the next frame and must not be retained.
type FrameHandler func(stats RenderStats, frame []byte) error

// RenderLoop renders frames back to back and publishes each one to a FrameExchange
type RenderLoop struct {
	raytracer *Raytracer
	exchange  *FrameExchange
	logger    core.Logger
	onFrame   FrameHandler
	stop      atomic.Bool
	published atomic.Int64
	dropped   atomic.Int64
}

// NewRenderLoop creates a loop that publishes to exchange. The exchange must match the
// raytracer's resolution.
func NewRenderLoop(rt *Raytracer, exchange *FrameExchange, logger core.Logger) *RenderLoop {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &RenderLoop{
		raytracer: rt,
		exchange:  exchange,
		logger:    logger,
	}
}

// OnFrame registers a handler run after every frame, before it is published
func (l *RenderLoop) OnFrame(handler FrameHandler) {
	l.onFrame = handler
}

// Stop asks the loop to exit after the frame in progress
func (l *RenderLoop) Stop() {
	l.stop.Store(true)
}

// Published returns how many frames were handed to the exchange
func (l *RenderLoop) Published() int64 {
	return l.published.Load()
}

// Dropped returns how many frames were discarded because the consumer had not taken the previous one
func (l *RenderLoop) Dropped() int64 {
	return l.dropped.Load()
}

// Run renders until the context is cancelled, Stop is called or maxFrames frames
// have been rendered (maxFrames <= 0 means no limit). Cancellation is only observed
// between frames.
func (l *RenderLoop) Run(ctx context.Context, maxFrames int) error {
	width, height := l.raytracer.GetResolution()
	if width == 0 || height == 0 {
		return ErrNoScene
	}
	if ew, eh := l.exchange.Size(); ew != width || eh != height {
		return fmt.Errorf("%w: exchange is %dx%d, scene is %dx%d", ErrBufferSize, ew, eh, width, height)
	}

	output := make([]byte, width*height*3)
	if err := l.raytracer.SetOutputBuffer(output); err != nil {
		return err
	}

	for frame := 0; maxFrames <= 0 || frame < maxFrames; frame++ {
		if err := ctx.Err(); err != nil {
			l.logger.Printf("Render loop cancelled after %d frames\n", frame)
			return nil
		}
		if l.stop.Load() {
			l.logger.Printf("Render loop stopped after %d frames\n", frame)
			return nil
		}

		stats, err := l.raytracer.RenderFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame+1, err)
		}

		if l.onFrame != nil {
			if err := l.onFrame(stats, output); err != nil {
				return fmt.Errorf("frame %d handler: %w", stats.Frame, err)
			}
		}

		if l.exchange.Publish(output, stats) {
			l.published.Add(1)
		} else {
			l.dropped.Add(1)
		}
	}

	return nil
}
