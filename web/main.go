package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/web/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	// Parse command line flags, defaulting to the environment
	port := flag.Int("port", cfg.Port, "Port to serve on")
	scenesDir := flag.String("scenes", cfg.ScenesDir, "Directory scanned for scene files")
	staticDir := flag.String("static", "", "Directory served at / (empty to disable)")
	workers := flag.Int("workers", cfg.Workers, "Row workers per render (0 = CPU count - 1)")
	preview := flag.Int("preview", cfg.PreviewWidth, "Width of streamed preview frames (0 = full size)")
	flag.Parse()

	webServer := server.NewServer(server.Options{
		Port:         *port,
		ScenesDir:    *scenesDir,
		StaticDir:    *staticDir,
		Workers:      *workers,
		PreviewWidth: *preview,
	})

	log.Printf("Whitted Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
