package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/display"
	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// cameraFlags holds camera overrides from the command line. Empty vectors keep the default pose.
type cameraFlags struct {
	pos, dir, up string
	focal, fovy  float64
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command line flags
	sceneName := flag.String("scene", cfg.Scene, "Built-in scene ID, scene name from the scenes directory, or scene file path")
	scenesDir := flag.String("scenes", cfg.ScenesDir, "Directory scanned for scene files")
	frames := flag.Int("frames", 1, "Number of frames to render (0 = until interrupted, the default with -view)")
	outDir := flag.String("out", cfg.OutputDir, "Directory frames are written to (empty to disable)")
	view := flag.Bool("view", false, "Open a window showing the animation")
	workers := flag.Int("workers", cfg.Workers, "Row workers (0 = CPU count - 1)")
	useS3 := flag.Bool("s3", false, "Upload frames to the configured S3 bucket")
	var cam cameraFlags
	flag.StringVar(&cam.pos, "cam-pos", "", "Camera position as x,y,z")
	flag.StringVar(&cam.dir, "cam-dir", "", "Camera view direction as x,y,z")
	flag.StringVar(&cam.up, "cam-up", "", "Camera up vector as x,y,z")
	flag.Float64Var(&cam.focal, "focal", renderer.DefaultFocal, "Focal length")
	flag.Float64Var(&cam.fovy, "fovy", renderer.DefaultFovY, "Vertical field of view in degrees")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Whitted Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		if all, err := scene.ListAllScenes(*scenesDir); err == nil {
			for _, group := range all.Groups {
				for _, info := range group.Scenes {
					fmt.Printf("  %-20s %s\n", info.Name, info.Description)
				}
			}
		}
		fmt.Println()
		fmt.Printf("Frames are saved to <out>/%s\n", output.FrameName(1))
		fmt.Println("Viewer keys: W/S forward/back, A/D strafe, Q/E down/up, Z/X zoom, Esc quit")
		return
	}

	// The viewer animates until its window is closed unless a frame count is given
	if *view && !flagPassed("frames") {
		*frames = 0
	}

	if err := run(cfg, *sceneName, *scenesDir, *frames, *outDir, *view, *workers, *useS3, cam); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, sceneName, scenesDir string, frames int, outDir string, view bool, workers int, useS3 bool, cam cameraFlags) error {
	fmt.Println("Starting Whitted Raytracer...")

	logger := renderer.NewDefaultLogger()
	rt := renderer.NewRaytracer(logger, workers)
	defer rt.Close()

	if err := loadScene(rt, sceneName, scenesDir); err != nil {
		return err
	}
	if err := applyCamera(rt, cam); err != nil {
		return err
	}

	width, height := rt.GetResolution()
	fmt.Printf("Rendering %dx%d with %d workers\n", width, height, rt.NumWorkers())

	sink, err := newSink(cfg, outDir, useS3, width, height, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchange := renderer.NewFrameExchange(width, height)
	loop := renderer.NewRenderLoop(rt, exchange, logger)
	loop.OnFrame(func(stats renderer.RenderStats, frame []byte) error {
		return sink.HandleFrame(ctx, stats.Frame, frame)
	})

	startTime := time.Now()
	if view {
		// The window owns the main goroutine; frames render until it closes or the loop fails
		viewer := display.NewViewer(rt, exchange)
		loopErr := make(chan error, 1)
		go func() {
			err := loop.Run(ctx, frames)
			viewer.Fail(err)
			loopErr <- err
		}()

		viewErr := viewer.Run(fmt.Sprintf("Whitted Raytracer - %s", sceneName))
		loop.Stop()
		if err := <-loopErr; err != nil {
			return err
		}
		if viewErr != nil {
			return fmt.Errorf("viewer: %w", viewErr)
		}
		fmt.Printf("Presented %d frames\n", viewer.Frames())
	} else if err := loop.Run(ctx, frames); err != nil {
		return err
	}

	fmt.Printf("Rendered %d frames in %v\n", loop.Published()+loop.Dropped(), time.Since(startTime))
	return nil
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

// loadScene installs a built-in scene, a scene discovered in scenesDir, or a scene file path
func loadScene(rt *renderer.Raytracer, name, scenesDir string) error {
	if name == "" {
		return errors.New("no scene specified")
	}

	switch name {
	case "cornell-box", "cornell":
		return rt.SetScene(scene.NewCornellScene())
	}

	if info, ok := scene.FindScene(scenesDir, name); ok && info.FilePath != "" {
		return rt.LoadScene(info.FilePath)
	}
	return rt.LoadScene(name)
}

// applyCamera sets the camera pose and projection from command line overrides
func applyCamera(rt *renderer.Raytracer, cam cameraFlags) error {
	current := rt.Camera()
	pos, dir, up := current.Position, current.Direction, current.Up

	for _, override := range []struct {
		name  string
		value string
		dst   *core.Vec3
	}{
		{"cam-pos", cam.pos, &pos},
		{"cam-dir", cam.dir, &dir},
		{"cam-up", cam.up, &up},
	} {
		if override.value == "" {
			continue
		}
		v, err := core.ParseVec3(override.value)
		if err != nil {
			return fmt.Errorf("invalid -%s: %w", override.name, err)
		}
		*override.dst = v
	}

	if dir.Length() == 0 || up.Length() == 0 {
		return errors.New("camera direction and up vector must be non-zero")
	}

	rt.SetCamera(pos, dir, up)
	rt.SetProjection(cam.focal, cam.fovy)
	return nil
}

// newSink builds the frame destinations for a render
func newSink(cfg *config.Config, outDir string, useS3 bool, width, height int, logger core.Logger) (*output.Sink, error) {
	var writer *output.FrameWriter
	if outDir != "" {
		w, err := output.NewFrameWriter(outDir)
		if err != nil {
			return nil, err
		}
		writer = w
	}

	var publisher *output.S3Publisher
	if useS3 {
		if !cfg.S3.Enabled() {
			return nil, errors.New("-s3 requires RT_S3_BUCKET to be set")
		}
		p, err := output.NewS3Publisher(cfg.S3, logger)
		if err != nil {
			return nil, err
		}
		publisher = p
	}

	return output.NewSink(writer, publisher, width, height, logger), nil
}
