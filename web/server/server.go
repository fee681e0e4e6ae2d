package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Request limits
const (
	minResolution = 16
	maxResolution = 2000
	maxAntialias  = 8
	maxFrames     = 1000
	maxDepthLimit = 32
)

// Options configures the web server
type Options struct {
	Port         int
	ScenesDir    string // Directory scanned for scene files
	StaticDir    string // Directory served at "/", empty to disable
	Workers      int    // Row workers per render, 0 for the default
	PreviewWidth int    // Width of streamed frames, 0 for full resolution
}

// Server handles web requests for the raytracer
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	s := &Server{opts: opts, mux: http.NewServeMux()}

	if opts.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
	}
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	return s
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.opts.ScenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns a scene's settings and the request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "cornell-box"
	}

	sceneObj, err := s.loadScene(sceneID, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	occluders, lights := sceneObj.Partition()
	camera := renderer.NewCamera()
	response := map[string]interface{}{
		"scene": sceneID,
		"defaults": map[string]interface{}{
			"width":      sceneObj.Width,
			"height":     sceneObj.Height,
			"antialias":  sceneObj.AntialiasLevel,
			"maxDepth":   sceneObj.MaxDepth,
			"background": sceneObj.Background,
			"occluders":  len(occluders),
			"lights":     len(lights),
			"camera":     camera,
		},
		"limits": map[string]interface{}{
			"width":     map[string]int{"min": minResolution, "max": maxResolution},
			"height":    map[string]int{"min": minResolution, "max": maxResolution},
			"antialias": map[string]int{"min": 1, "max": maxAntialias},
			"frames":    map[string]int{"min": 1, "max": maxFrames},
			"maxDepth":  map[string]int{"min": 0, "max": maxDepthLimit},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// loadScene resolves a scene ID to a fresh scene. Only built-in scenes and files
// discovered in the scenes directory can be loaded.
func (s *Server) loadScene(id string, logger core.Logger) (*scene.Scene, error) {
	info, ok := scene.FindScene(s.opts.ScenesDir, id)
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", id)
	}

	if info.Type == "builtin" {
		switch info.ID {
		case "cornell-box":
			return scene.NewCornellScene(), nil
		}
		return nil, fmt.Errorf("unknown built-in scene: %s", id)
	}

	sceneObj, err := loaders.LoadScene(info.FilePath)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Printf("Loaded %s: %d shapes\n", info.FilePath, len(sceneObj.Shapes))
	}
	return sceneObj, nil
}

// SceneParams holds the scene and camera settings shared by render and inspect requests
type SceneParams struct {
	Scene     string
	Width     int // 0 keeps the scene's resolution
	Height    int
	Antialias int // 0 keeps the scene's level
	MaxDepth  int // -1 keeps the scene's depth
	CamPos    *core.Vec3
	CamDir    *core.Vec3
	CamUp     *core.Vec3
	Focal     float64
	FovY      float64
}

// parseSceneParams parses scene overrides and camera settings from the query
func parseSceneParams(values url.Values) (*SceneParams, error) {
	params := &SceneParams{Scene: values.Get("scene")}
	if params.Scene == "" {
		params.Scene = "cornell-box"
	}

	var err error
	if params.Width, err = parseIntParam(values, "width", 0, minResolution, maxResolution); err != nil {
		return nil, err
	}
	if params.Height, err = parseIntParam(values, "height", 0, minResolution, maxResolution); err != nil {
		return nil, err
	}
	if params.Antialias, err = parseIntParam(values, "antialias", 0, 1, maxAntialias); err != nil {
		return nil, err
	}
	if params.MaxDepth, err = parseIntParam(values, "maxDepth", -1, 0, maxDepthLimit); err != nil {
		return nil, err
	}
	if params.CamPos, err = parseVecParam(values, "camPos"); err != nil {
		return nil, err
	}
	if params.CamDir, err = parseVecParam(values, "camDir"); err != nil {
		return nil, err
	}
	if params.CamUp, err = parseVecParam(values, "camUp"); err != nil {
		return nil, err
	}
	// Out-of-range projections are clamped by the camera
	if params.Focal, err = parseFloatParam(values, "focal", renderer.DefaultFocal, -1e6, 1e6); err != nil {
		return nil, err
	}
	if params.FovY, err = parseFloatParam(values, "fovy", renderer.DefaultFovY, -360, 360); err != nil {
		return nil, err
	}

	return params, nil
}

// apply overrides scene settings and configures the raytracer's camera
func (p *SceneParams) apply(sceneObj *scene.Scene, rt *renderer.Raytracer) error {
	if p.Width > 0 {
		sceneObj.Width = p.Width
	}
	if p.Height > 0 {
		sceneObj.Height = p.Height
	}
	if p.Antialias > 0 {
		sceneObj.AntialiasLevel = p.Antialias
	}
	if p.MaxDepth >= 0 {
		sceneObj.MaxDepth = p.MaxDepth
	}
	if err := rt.SetScene(sceneObj); err != nil {
		return err
	}

	camera := rt.Camera()
	pos, dir, up := camera.Position, camera.Direction, camera.Up
	if p.CamPos != nil {
		pos = *p.CamPos
	}
	if p.CamDir != nil {
		dir = *p.CamDir
	}
	if p.CamUp != nil {
		up = *p.CamUp
	}
	rt.SetCamera(pos, dir, up)
	rt.SetProjection(p.Focal, p.FovY)
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseVecParam parses an optional "x,y,z" parameter
func parseVecParam(values url.Values, key string) (*core.Vec3, error) {
	value := values.Get(key)
	if value == "" {
		return nil, nil
	}
	v, err := core.ParseVec3(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &v, nil
}

// writeJSON writes a JSON response with CORS enabled
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
