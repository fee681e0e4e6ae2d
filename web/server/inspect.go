package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	renderer.InspectResult
	Frame        int                    `json:"frame"`
	GeometryType string                 `json:"geometryType"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractGeometryInfo extracts the variant-specific attributes of a shape
func extractGeometryInfo(shape *geometry.Shape) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"center":       shape.Center,
		"diffuse":      shape.Diffuse,
		"specular":     shape.Specular,
		"shininess":    shape.Shininess,
		"reflectivity": shape.Reflectivity,
		"color": fmt.Sprintf("#%02x%02x%02x",
			channelHex(shape.Diffuse.X), channelHex(shape.Diffuse.Y), channelHex(shape.Diffuse.Z)),
	}

	switch shape.Kind {
	case geometry.KindSphere:
		properties["radius"] = shape.Radius
	case geometry.KindQuad:
		properties["v1"] = shape.V1
		properties["v2"] = shape.V2
		properties["v3"] = shape.V3
		properties["v4"] = shape.V4
		properties["normal"] = shape.Normal
	}

	if !shape.Motion.Stationary() {
		properties["motion"] = map[string]interface{}{
			"direction": shape.Motion.Direction,
			"distance":  shape.Motion.Distance,
			"speed":     shape.Motion.Speed,
			"offset":    shape.Motion.Offset(),
		}
	}

	return shape.Kind.String(), properties
}

func channelHex(v float64) int {
	return int(max(0, min(1, v)) * 255)
}

// handleInspect reports what the primary ray through a pixel hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	params, err := parseSceneParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	// Animation state to inspect, frame 0 is the authored layout
	frame, err := parseIntParam(r.URL.Query(), "frame", 0, 0, maxFrames)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sceneObj, err := s.loadScene(params.Scene, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	advance(sceneObj, frame)

	rt := renderer.NewRaytracer(nil, 1)
	defer rt.Close()
	if err := params.apply(sceneObj, rt); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	width, height := rt.GetResolution()
	if pixelX < 0 || pixelY < 0 || pixelX >= width || pixelY >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result, err := rt.Inspect(pixelX, pixelY)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	response := InspectResponse{InspectResult: result, Frame: frame}
	if result.Hit {
		response.GeometryType, response.Properties = extractGeometryInfo(sceneObj.Shapes[result.ShapeIndex])
	}

	writeJSON(w, http.StatusOK, response)
}

// advance moves every shape forward the given number of animation steps
func advance(sceneObj *scene.Scene, frames int) {
	for i := 0; i < frames; i++ {
		sceneObj.Update()
	}
}
