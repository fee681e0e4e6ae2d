package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/df07/go-whitted-raytracer/pkg/output"
)

// Defaults used when neither the environment nor the .env file sets a value
const (
	DefaultScene        = "cornell-box"
	DefaultScenesDir    = "scenes"
	DefaultOutputDir    = "output"
	DefaultPreviewWidth = 256
	DefaultPort         = 8080
)

// Config holds settings shared by the CLI and the web server.
// Command line flags override these values.
type Config struct {
	Scene        string // Built-in scene ID or scene file path
	ScenesDir    string // Directory scanned for scene files
	OutputDir    string // Directory frames are written to
	Workers      int    // Row workers, 0 for one less than the CPU count
	PreviewWidth int    // Width of streamed preview thumbnails
	Port         int    // Web server port
	S3           output.S3Config
}

// source resolves keys from the process environment first, then the .env file
type source struct {
	dotenv map[string]string
}

func (s source) get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := s.dotenv[key]; ok {
		return value
	}
	return fallback
}

func (s source) getInt(key string, fallback int) (int, error) {
	raw := s.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

// Load reads configuration from the environment and an optional .env file.
// A missing .env file is not an error. The process environment is never modified.
func Load(envFile string) (*Config, error) {
	src := source{dotenv: map[string]string{}}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
		if values != nil {
			src.dotenv = values
		}
	}

	cfg := &Config{
		Scene:     src.get("RT_SCENE", DefaultScene),
		ScenesDir: src.get("RT_SCENES_DIR", DefaultScenesDir),
		OutputDir: src.get("RT_OUTPUT_DIR", DefaultOutputDir),
		S3: output.S3Config{
			Bucket:    src.get("RT_S3_BUCKET", ""),
			Region:    src.get("RT_S3_REGION", "us-east-1"),
			Endpoint:  src.get("RT_S3_ENDPOINT", ""),
			AccessKey: src.get("RT_S3_ACCESS_KEY", ""),
			SecretKey: src.get("RT_S3_SECRET_KEY", ""),
			Prefix:    src.get("RT_S3_PREFIX", ""),
		},
	}

	var err error
	if cfg.Workers, err = src.getInt("RT_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.PreviewWidth, err = src.getInt("RT_PREVIEW_WIDTH", DefaultPreviewWidth); err != nil {
		return nil, err
	}
	if cfg.Port, err = src.getInt("RT_PORT", DefaultPort); err != nil {
		return nil, err
	}

	return cfg, nil
}
