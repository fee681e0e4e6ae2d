package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// SceneFileParser holds the state carried between lines of a scene description
type SceneFileParser struct {
	scene    *scene.Scene
	current  *geometry.Shape // Shape that shape directives apply to, nil before the first shape
	posCount int             // POS directives seen since the current shape began
	leftover string          // Unread tail of the last integer token, read as the next key
}

// NewSceneFileParser creates a parser that fills a scene with default settings
func NewSceneFileParser() *SceneFileParser {
	return &SceneFileParser{scene: scene.NewScene()}
}

// ParseScene parses a scene description from an io.Reader.
// Malformed directives only abort the rest of their own line.
func ParseScene(reader io.Reader) (*scene.Scene, error) {
	parser := NewSceneFileParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.processLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return parser.scene, nil
}

// LoadScene loads and parses a scene description file
func LoadScene(filename string) (*scene.Scene, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	return ParseScene(file)
}

// processLine applies every directive on a line in order
func (p *SceneFileParser) processLine(line string) {
	tokens := strings.Fields(line)

	for i := 0; i < len(tokens); {
		key := tokens[i]
		i++

		if strings.HasPrefix(key, "//") {
			return
		}

		consumed, ok := p.applyDirective(key, tokens[i:])
		if !ok {
			return
		}
		i += consumed

		if p.leftover != "" {
			i--
			tokens[i] = p.leftover
			p.leftover = ""
		}
	}
}

// applyDirective applies one directive to the parser state.
// It returns how many argument tokens were consumed and false if the arguments were malformed.
func (p *SceneFileParser) applyDirective(key string, args []string) (int, bool) {
	switch key {
	case "LIGHT":
		p.beginShape(geometry.KindLight)
		return 0, true
	case "SPHERE":
		p.beginShape(geometry.KindSphere)
		return 0, true
	case "QUAD":
		p.beginShape(geometry.KindQuad)
		return 0, true

	case "POS":
		v, ok := parseVec3(args)
		if !ok {
			return 0, false
		}
		p.setPosition(v)
		return 3, true

	case "RADIUS":
		// Consumed only for spheres, otherwise the value is read as the next key and skipped
		if p.current == nil || p.current.Kind != geometry.KindSphere {
			return 0, true
		}
		r, ok := parseFloats(args, 1)
		if !ok {
			return 0, false
		}
		p.current.Radius = r[0]
		return 1, true

	case "DIFF", "SPEC", "MOVEDIR":
		v, ok := parseVec3(args)
		if !ok {
			return 0, false
		}
		if p.current != nil {
			switch key {
			case "DIFF":
				p.current.Diffuse = v
			case "SPEC":
				p.current.Specular = v
			case "MOVEDIR":
				p.current.Motion.Direction = v.Normalize()
			}
		}
		return 3, true

	case "SHININESS", "REFLECTIVITY", "MOVEDISTANCE", "MOVESPEED":
		f, ok := parseFloats(args, 1)
		if !ok {
			return 0, false
		}
		if p.current != nil {
			switch key {
			case "SHININESS":
				p.current.Shininess = f[0]
			case "REFLECTIVITY":
				p.current.Reflectivity = f[0]
			case "MOVEDISTANCE":
				p.current.Motion.Distance = f[0]
			case "MOVESPEED":
				p.current.Motion.Speed = f[0]
			}
		}
		return 1, true

	case "BACKGROUND":
		v, ok := parseVec3(args)
		if !ok {
			return 0, false
		}
		p.scene.Background = v
		return 3, true

	case "RESOLUTION":
		n, consumed, ok := p.parseInts(args, 2)
		if !ok {
			return 0, false
		}
		if n[0] > 0 && n[1] > 0 {
			p.scene.Width, p.scene.Height = n[0], n[1]
		}
		return consumed, true

	case "MAXDEPTH":
		n, consumed, ok := p.parseInts(args, 1)
		if !ok {
			return 0, false
		}
		p.scene.MaxDepth = n[0]
		return consumed, true

	case "ANTIALIAS":
		n, consumed, ok := p.parseInts(args, 1)
		if !ok {
			return 0, false
		}
		p.scene.AntialiasLevel = max(1, n[0])
		return consumed, true
	}

	// Unknown tokens are skipped
	return 0, true
}

// beginShape appends a new shape and resets the vertex counter
func (p *SceneFileParser) beginShape(kind geometry.Kind) {
	p.current = geometry.NewEmpty(kind)
	p.scene.Add(p.current)
	p.posCount = 0
}

// setPosition sets a light or sphere center, or the next quad vertex
func (p *SceneFileParser) setPosition(v core.Vec3) {
	defer func() { p.posCount++ }()

	if p.current == nil {
		return
	}

	switch p.current.Kind {
	case geometry.KindLight, geometry.KindSphere:
		p.current.Center = v
	case geometry.KindQuad:
		switch p.posCount {
		case 0:
			p.current.SetV1(v)
		case 1:
			p.current.SetV2(v)
		case 2:
			p.current.SetV3(v)
		}
	}
}

func parseVec3(args []string) (core.Vec3, bool) {
	f, ok := parseFloats(args, 3)
	if !ok {
		return core.Vec3{}, false
	}
	return core.NewVec3(f[0], f[1], f[2]), true
}

// parseFloats parses the first n tokens as floats
func parseFloats(args []string, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// parseInts reads n integers from the leading digits of the tokens, so "2.5" reads as 2.
// A token's unread tail feeds the next integer, or is kept in p.leftover once all n are read.
// It returns how many tokens were touched.
func (p *SceneFileParser) parseInts(args []string, n int) ([]int, int, bool) {
	values := make([]int, 0, n)
	consumed := 0
	rest := ""
	for len(values) < n {
		if rest == "" {
			if consumed == len(args) {
				return nil, 0, false
			}
			rest = args[consumed]
			consumed++
		}

		v, tail, ok := leadingInt(rest)
		if !ok {
			return nil, 0, false
		}
		values = append(values, v)
		rest = tail
	}
	p.leftover = rest
	return values, consumed, true
}

// leadingInt parses an optionally signed run of digits at the start of s
func leadingInt(s string) (int, string, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, s, false
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return v, s[end:], true
}
