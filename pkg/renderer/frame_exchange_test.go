package renderer

import (
	"bytes"
	"sync"
	"testing"
)

func TestFrameExchange_PublishAndTake(t *testing.T) {
	fx := NewFrameExchange(2, 1)
	if w, h := fx.Size(); w != 2 || h != 1 {
		t.Fatalf("Size() = %dx%d, want 2x1", w, h)
	}

	dst := []byte{9, 9, 9, 9, 9, 9}
	if _, ok := fx.TryTake(dst); ok {
		t.Fatal("TryTake should fail before anything is published")
	}
	if !bytes.Equal(dst, []byte{9, 9, 9, 9, 9, 9}) {
		t.Error("TryTake must not touch dst when no frame is ready")
	}

	first := []byte{1, 2, 3, 4, 5, 6}
	if !fx.Publish(first, RenderStats{Frame: 1}) {
		t.Fatal("First publish should succeed")
	}
	if !fx.Ready() {
		t.Error("Exchange should be ready after publish")
	}

	// Producer reuses its buffer; the exchange holds its own copy
	first[0] = 100
	if fx.Publish([]byte{7, 7, 7, 7, 7, 7}, RenderStats{Frame: 2}) {
		t.Error("Publish should drop a frame while the previous one is pending")
	}

	stats, ok := fx.TryTake(dst)
	if !ok {
		t.Fatal("TryTake should succeed after publish")
	}
	if stats.Frame != 1 {
		t.Errorf("Took stats for frame %d, want 1", stats.Frame)
	}
	if !bytes.Equal(dst, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Took %v, want the first published frame", dst)
	}
	if fx.Ready() {
		t.Error("TryTake should clear the ready flag")
	}
	if _, ok := fx.TryTake(dst); ok {
		t.Error("A frame can only be taken once")
	}

	if !fx.Publish([]byte{8, 8, 8, 8, 8, 8}, RenderStats{Frame: 3}) {
		t.Error("Publish should succeed again once the frame was taken")
	}
}

func TestFrameExchange_ConcurrentProducerConsumer(t *testing.T) {
	const frames = 200
	fx := NewFrameExchange(4, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := make([]byte, 4*4*3)
		for i := 1; i <= frames; i++ {
			for j := range frame {
				frame[j] = byte(i)
			}
			fx.Publish(frame, RenderStats{Frame: i})
		}
	}()

	dst := make([]byte, 4*4*3)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		if stats, ok := fx.TryTake(dst); ok {
			// Every taken frame is internally consistent and matches its stats
			for _, b := range dst {
				if b != dst[0] {
					t.Fatalf("Torn frame: %v", dst)
				}
			}
			if int(dst[0]) != stats.Frame {
				t.Fatalf("Frame %d carried stats for frame %d", dst[0], stats.Frame)
			}
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
