package renderer

import (
	"sync/atomic"
)

// FrameExchange hands finished frames from one producer to one consumer.
// The only coordination is the ready flag: the producer writes only while it is clear,
// the consumer reads only while it is set.
type FrameExchange struct {
	ready  atomic.Bool
	frame  []byte
	stats  RenderStats
	width  int
	height int
}

// NewFrameExchange creates an exchange for width x height RGB frames
func NewFrameExchange(width, height int) *FrameExchange {
	return &FrameExchange{
		frame:  make([]byte, width*height*3),
		width:  width,
		height: height,
	}
}

// Size returns the frame resolution
func (fx *FrameExchange) Size() (int, int) {
	return fx.width, fx.height
}

// Publish copies a finished frame and its stats and marks it ready.
// It returns false and drops the frame if the previous one has not been taken yet.
func (fx *FrameExchange) Publish(frame []byte, stats RenderStats) bool {
	if fx.ready.Load() {
		return false
	}
	copy(fx.frame, frame)
	fx.stats = stats
	fx.ready.Store(true)
	return true
}

// TryTake copies the ready frame into dst, returns its stats and clears the flag.
// It returns false without touching dst when no frame is ready.
func (fx *FrameExchange) TryTake(dst []byte) (RenderStats, bool) {
	if !fx.ready.Load() {
		return RenderStats{}, false
	}
	copy(dst, fx.frame)
	stats := fx.stats
	fx.ready.Store(false)
	return stats, true
}

// Ready reports whether a frame is waiting to be taken
func (fx *FrameExchange) Ready() bool {
	return fx.ready.Load()
}
