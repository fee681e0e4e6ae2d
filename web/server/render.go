package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// framePollInterval is how often the SSE consumer checks for a finished frame
const framePollInterval = 10 * time.Millisecond

// RenderRequest represents a render request from the client
type RenderRequest struct {
	SceneParams
	Frames int // Number of animation frames to render
}

// FrameUpdate represents a finished frame sent via SSE
type FrameUpdate struct {
	Frame        int     `json:"frame"`
	TotalFrames  int     `json:"totalFrames"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	ImageData    string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs    int64   `json:"elapsedMs"`
	FrameMs      int64   `json:"frameMs"`
	TotalSamples int     `json:"totalSamples"`
	RaysPerSec   float64 `json:"raysPerSec"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders an animation and streams frames via SSE as the consumer
// of a FrameExchange. Frames the client cannot keep up with are dropped.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single SSE writer goroutine; the handler waits for it before returning
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := parseRenderRequest(r)
	if err != nil {
		sendEvent(ctx, sseEventChan, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	defer func() {
		close(consoleChan)
		consoleWG.Wait()
	}()

	sceneObj, err := s.loadScene(req.Scene, webLogger)
	if err != nil {
		sendEvent(ctx, sseEventChan, "error", err.Error())
		return
	}

	rt := renderer.NewRaytracer(webLogger, s.opts.Workers)
	defer rt.Close()
	if err := req.apply(sceneObj, rt); err != nil {
		sendEvent(ctx, sseEventChan, "error", err.Error())
		return
	}

	width, height := rt.GetResolution()
	webLogger.Printf("Rendering %s: %d frames at %dx%d, antialias %d, %d workers\n",
		req.Scene, req.Frames, width, height, sceneObj.AntialiasLevel, rt.NumWorkers())

	exchange := renderer.NewFrameExchange(width, height)
	loop := renderer.NewRenderLoop(rt, exchange, webLogger)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx, req.Frames)
	}()

	startTime := time.Now()
	frame := make([]byte, width*height*3)
	ticker := time.NewTicker(framePollInterval)
	defer ticker.Stop()

	takeFrame := func() {
		stats, ok := exchange.TryTake(frame)
		if !ok {
			return
		}
		s.sendFrame(ctx, sseEventChan, frame, stats, req.Frames, startTime)
	}

	for {
		select {
		case err := <-loopErr:
			// Deliver the frame published last, if the consumer has not taken it yet
			takeFrame()
			if err != nil {
				sendEvent(ctx, sseEventChan, "error", fmt.Sprintf("Rendering failed: %v", err))
				return
			}
			summary, _ := json.Marshal(map[string]interface{}{
				"published": loop.Published(),
				"dropped":   loop.Dropped(),
				"elapsedMs": time.Since(startTime).Milliseconds(),
			})
			sendEvent(ctx, sseEventChan, "complete", string(summary))
			return

		case <-ticker.C:
			takeFrame()

		case <-ctx.Done():
			// Client disconnected, the loop stops after its current frame
			<-loopErr
			return
		}
	}
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	params, err := parseSceneParams(r.URL.Query())
	if err != nil {
		return nil, err
	}

	req := &RenderRequest{SceneParams: *params}
	if req.Frames, err = parseIntParam(r.URL.Query(), "frames", 30, 1, maxFrames); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.Antialias > 2 {
		log.Printf("Render warning: Large image with high antialiasing may render slowly")
	}

	return req, nil
}

// sendFrame encodes a frame, scaled to the preview width, and queues it
func (s *Server) sendFrame(ctx context.Context, sseEventChan chan SSEEvent, frame []byte, stats renderer.RenderStats, totalFrames int, startTime time.Time) {
	img, err := output.ToImage(frame, stats.Width, stats.Height)
	if err != nil {
		log.Printf("Error converting frame %d: %v", stats.Frame, err)
		return
	}
	preview := output.Thumbnail(img, s.opts.PreviewWidth)

	data, err := output.EncodePNG(preview)
	if err != nil {
		log.Printf("Error encoding frame %d: %v", stats.Frame, err)
		return
	}

	update := FrameUpdate{
		Frame:        stats.Frame,
		TotalFrames:  totalFrames,
		Width:        preview.Bounds().Dx(),
		Height:       preview.Bounds().Dy(),
		ImageData:    base64.StdEncoding.EncodeToString(data),
		ElapsedMs:    time.Since(startTime).Milliseconds(),
		FrameMs:      stats.Duration.Milliseconds(),
		TotalSamples: stats.TotalSamples,
		RaysPerSec:   stats.RaysPerSecond(),
	}

	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}
	sendEvent(ctx, sseEventChan, "frame", string(payload))
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents writes all SSE events from a single goroutine until the channel closes
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for event := range sseEventChan {
		// Keep draining after a disconnect so senders never block
		if ctx.Err() != nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages as SSE events until the channel closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

// sendEvent queues an SSE event unless the client is gone
func sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType, data string) {
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}
