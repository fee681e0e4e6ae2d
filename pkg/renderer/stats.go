package renderer

import "time"

// RenderStats contains statistics about one rendered frame
type RenderStats struct {
	Frame        int           // 1-based frame number since the scene was loaded
	Width        int           // Output width in pixels
	Height       int           // Output height in pixels
	NativeWidth  int           // Supersampled width
	NativeHeight int           // Supersampled height
	TotalSamples int           // Primary rays traced
	Duration     time.Duration // Wall time for animate, trace and downscale
}

// SamplesPerPixel returns the number of primary rays per output pixel
func (s RenderStats) SamplesPerPixel() float64 {
	pixels := s.Width * s.Height
	if pixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(pixels)
}

// RaysPerSecond returns the primary ray throughput of the frame
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}
