package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

const testSceneFile = `// Scene: Test Sphere
// Group: Tests
BACKGROUND 0 0 0.5
RESOLUTION 32 32
SPHERE POS 0 0 0 RADIUS 50 DIFF 0.5 0.5 0.5
LIGHT POS 0 0 -200 DIFF 1 1 1
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sphere.txt"), []byte(testSceneFile), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
	return NewServer(Options{ScenesDir: dir, Workers: 2})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Body = %s", rec.Body.String())
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var response struct {
		Groups []struct {
			Name   string `json:"name"`
			Scenes []struct {
				ID string `json:"id"`
			} `json:"scenes"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}
	if response.Groups[1].Name != "Tests" || response.Groups[1].Scenes[0].ID != "file:sphere" {
		t.Errorf("Unexpected file group: %+v", response.Groups[1])
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/scene-config?scene=file:sphere")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
	}
	var response struct {
		Defaults map[string]interface{} `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if response.Defaults["width"] != float64(32) || response.Defaults["lights"] != float64(1) {
		t.Errorf("Defaults = %v", response.Defaults)
	}

	if rec := get(t, s, "/api/scene-config?scene=../../etc/passwd"); rec.Code != http.StatusBadRequest {
		t.Errorf("Unknown scene status = %d, want 400", rec.Code)
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantHit    bool
		wantType   string
	}{
		{"center hits sphere", "scene=sphere&x=16&y=16", http.StatusOK, true, "sphere"},
		{"corner misses", "scene=sphere&x=0&y=0", http.StatusOK, false, ""},
		{"camera moved away", "scene=sphere&x=16&y=16&camPos=0,500,-250", http.StatusOK, false, ""},
		{"out of bounds", "scene=sphere&x=32&y=0", http.StatusBadRequest, false, ""},
		{"bad x", "scene=sphere&x=abc&y=0", http.StatusBadRequest, false, ""},
		{"bad camera", "scene=sphere&x=1&y=1&camDir=1,2", http.StatusBadRequest, false, ""},
		{"unknown scene", "scene=nope&x=1&y=1", http.StatusBadRequest, false, ""},
		{"oversized scene", "scene=sphere&x=1&y=1&width=2000&height=2000&antialias=8", http.StatusBadRequest, false, ""},
		{"builtin scene", "scene=cornell-box&x=200&y=200&frame=3", http.StatusOK, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var response InspectResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if response.Hit != tt.wantHit {
				t.Errorf("Hit = %t, want %t", response.Hit, tt.wantHit)
			}
			if tt.wantType != "" && response.GeometryType != tt.wantType {
				t.Errorf("GeometryType = %q, want %q", response.GeometryType, tt.wantType)
			}
			if response.Hit && response.Properties["diffuse"] == nil {
				t.Error("Hit response should include shape properties")
			}
		})
	}
}

func TestHandleRender_StreamsFrames(t *testing.T) {
	s := newTestServer(t)
	s.opts.PreviewWidth = 16

	rec := get(t, s, "/api/render?scene=file:sphere&frames=3&width=24&height=24")
	body := rec.Body.String()

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, "event: frame\n") {
		t.Errorf("Expected at least one frame event, got:\n%s", body)
	}
	if !strings.Contains(body, "event: complete\n") {
		t.Errorf("Expected complete event, got:\n%s", body)
	}
	if strings.Contains(body, "event: error\n") {
		t.Errorf("Unexpected error event:\n%s", body)
	}

	// Frame payloads are scaled to the preview width
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: {\"frame\"") {
			continue
		}
		var update FrameUpdate
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
			t.Fatalf("Invalid frame JSON: %v", err)
		}
		if update.Width != 16 || update.Height != 16 || update.TotalFrames != 3 {
			t.Errorf("Unexpected frame update: %+v", update)
		}
		if update.ImageData == "" {
			t.Error("Frame update has no image data")
		}
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	tests := []string{
		"frames=0",
		"frames=abc",
		"width=4",
		"scene=missing",
		"width=2000&height=2000&antialias=8",
	}

	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			rec := get(t, newTestServer(t), "/api/render?"+query)
			if !strings.Contains(rec.Body.String(), "event: error\n") {
				t.Errorf("Expected error event, got:\n%s", rec.Body.String())
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
		wantErr  bool
	}{
		{"default", "", 30, false},
		{"valid", "12", 12, false},
		{"min", "1", 1, false},
		{"below min", "0", 0, true},
		{"above max", "1001", 0, true},
		{"not a number", "ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			if tt.value != "" {
				values.Set("frames", tt.value)
			}
			got, err := parseIntParam(values, "frames", 30, 1, 1000)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %t", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestParseSceneParams(t *testing.T) {
	values, _ := url.ParseQuery("scene=file:sphere&width=64&antialias=2&maxDepth=0&camPos=1,2,3&fovy=200")
	params, err := parseSceneParams(values)
	if err != nil {
		t.Fatalf("parseSceneParams() error: %v", err)
	}

	if params.Scene != "file:sphere" || params.Width != 64 || params.Height != 0 {
		t.Errorf("Unexpected params: %+v", params)
	}
	if params.Antialias != 2 || params.MaxDepth != 0 {
		t.Errorf("Antialias/MaxDepth = %d/%d", params.Antialias, params.MaxDepth)
	}
	if params.CamPos == nil || *params.CamPos != core.NewVec3(1, 2, 3) {
		t.Errorf("CamPos = %v", params.CamPos)
	}
	if params.CamDir != nil || params.CamUp != nil {
		t.Error("Unset camera vectors should be nil")
	}
	// Clamping happens in the camera, not the parser
	if params.FovY != 200 {
		t.Errorf("FovY = %f", params.FovY)
	}

	defaults, err := parseSceneParams(url.Values{})
	if err != nil {
		t.Fatalf("parseSceneParams() error: %v", err)
	}
	if defaults.Scene != "cornell-box" || defaults.MaxDepth != -1 {
		t.Errorf("Defaults = %+v", defaults)
	}
}
