package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// frameJob is everything the workers need to produce one frame
type frameJob struct {
	tracer   *tracer
	plane    imagePlane
	maxDepth int

	native       []byte // Supersampled RGB, top row first
	nativeWidth  int
	nativeHeight int

	output []byte // Final RGB, top row first
	width  int
	height int
	level  int // Antialias samples per axis
}

// traceRow traces every sample in one native row and returns the number of samples
func (j *frameJob) traceRow(row int) int {
	base := row * j.nativeWidth * 3
	for col := 0; col < j.nativeWidth; col++ {
		color := j.tracer.trace(j.plane.rayThrough(row, col), nil, j.maxDepth)
		r, g, b := toBytes(color)

		i := base + col*3
		j.native[i] = r
		j.native[i+1] = g
		j.native[i+2] = b
	}
	return j.nativeWidth
}

// downscaleRow box-filters one output row from the native buffer.
// Each output channel is the integer mean of its level x level block.
func (j *frameJob) downscaleRow(row int) {
	downscaleRow(j.native, j.nativeWidth, j.output, j.width, j.level, row)
}

func downscaleRow(native []byte, nativeWidth int, output []byte, width, level, row int) {
	area := level * level
	for col := 0; col < width; col++ {
		var sumR, sumG, sumB int
		for dy := 0; dy < level; dy++ {
			rowBase := (row*level + dy) * nativeWidth
			for dx := 0; dx < level; dx++ {
				i := (rowBase + col*level + dx) * 3
				sumR += int(native[i])
				sumG += int(native[i+1])
				sumB += int(native[i+2])
			}
		}

		o := (row*width + col) * 3
		output[o] = byte(sumR / area)
		output[o+1] = byte(sumG / area)
		output[o+2] = byte(sumB / area)
	}
}

// toBytes clamps each channel to [0,1] and scales to [0,255], truncating
func toBytes(c core.Vec3) (byte, byte, byte) {
	return channelByte(c.X), channelByte(c.Y), channelByte(c.Z)
}

func channelByte(v float64) byte {
	return byte(mgl64.Clamp(v, 0, 1) * 255)
}
