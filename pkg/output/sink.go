package output

import (
	"context"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Sink persists rendered frames to disk and, optionally, to S3
type Sink struct {
	writer    *FrameWriter
	publisher *S3Publisher
	width     int
	height    int
	logger    core.Logger
}

// NewSink creates a sink for width x height frames. Either destination may be nil.
func NewSink(writer *FrameWriter, publisher *S3Publisher, width, height int, logger core.Logger) *Sink {
	return &Sink{
		writer:    writer,
		publisher: publisher,
		width:     width,
		height:    height,
		logger:    logger,
	}
}

// HandleFrame converts one RGB frame and sends it to every configured destination
func (s *Sink) HandleFrame(ctx context.Context, frame int, rgb []byte) error {
	img, err := ToImage(rgb, s.width, s.height)
	if err != nil {
		return err
	}

	if s.writer != nil {
		path, err := s.writer.WriteFrame(frame, img)
		if err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Printf("Saved frame %d to %s\n", frame, path)
		}
	}

	if s.publisher != nil {
		data, err := EncodePNG(img)
		if err != nil {
			return err
		}
		if err := s.publisher.PublishFrame(ctx, frame, data); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}

	return nil
}
