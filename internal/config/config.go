// Package config loads image-handler settings from a TOML file, an optional
// .env file and IMAGE_HANDLER_* environment variables, in that order of
// increasing precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/image-handler/internal/picture"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns a commented configuration file with every default.
func SampleConfig() string {
	return sampleConfig
}

// Log contains logger settings.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Source contains limits for loading encoded files.
type Source struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// Output is the format requested when a caller leaves one unspecified.
// Empty or zero fields are wildcards. MaxPixels bounds every picture decoded
// or converted, requested or not.
type Output struct {
	Chroma    string `toml:"chroma"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MaxPixels int64  `toml:"max_pixels"`
}

// OCR contains text recognition settings.
type OCR struct {
	Language string `toml:"language"`
}

// Config is the full application configuration.
type Config struct {
	Log    Log    `toml:"log"`
	Source Source `toml:"source"`
	Output Output `toml:"output"`
	OCR    OCR    `toml:"ocr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Source: Source{MaxBytes: 64 << 20},
		Output: Output{MaxPixels: picture.DefaultMaxPixels},
		OCR:    OCR{Language: "eng"},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), a .env file in the working directory if one exists, and
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	num64 := func(key string, dst *int64) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("IMAGE_HANDLER_LOG_LEVEL", &c.Log.Level)
	str("IMAGE_HANDLER_LOG_FILE", &c.Log.File)
	str("IMAGE_HANDLER_OUTPUT_CHROMA", &c.Output.Chroma)
	str("IMAGE_HANDLER_OCR_LANGUAGE", &c.OCR.Language)
	if err := num("IMAGE_HANDLER_OUTPUT_WIDTH", &c.Output.Width); err != nil {
		return err
	}
	if err := num("IMAGE_HANDLER_OUTPUT_HEIGHT", &c.Output.Height); err != nil {
		return err
	}
	if err := num64("IMAGE_HANDLER_SOURCE_MAX_BYTES", &c.Source.MaxBytes); err != nil {
		return err
	}
	return num64("IMAGE_HANDLER_OUTPUT_MAX_PIXELS", &c.Output.MaxPixels)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Log.Level)
	}
	if c.Source.MaxBytes < 0 {
		return fmt.Errorf("source.max_bytes: must not be negative")
	}
	if c.Output.Width < 0 || c.Output.Height < 0 {
		return fmt.Errorf("output: width and height must not be negative")
	}
	if c.Output.MaxPixels <= 0 {
		return fmt.Errorf("output.max_pixels: must be positive")
	}
	if c.Output.Width > 0 && c.Output.Height > 0 && !c.OutputFormat().Fits(c.Output.MaxPixels) {
		return fmt.Errorf("output: %dx%d is over max_pixels %d", c.Output.Width, c.Output.Height, c.Output.MaxPixels)
	}
	chroma, err := picture.ParseChroma(c.Output.Chroma)
	if err != nil {
		return fmt.Errorf("output.chroma: %w", err)
	}
	if chroma != "" && !chroma.IsRaw() {
		return fmt.Errorf("output.chroma: %q is not a raw pixel format", c.Output.Chroma)
	}
	return nil
}

// OutputFormat returns the configured default output format.
func (c Config) OutputFormat() picture.Format {
	chroma, _ := picture.ParseChroma(c.Output.Chroma)
	return picture.Format{Chroma: chroma, Width: c.Output.Width, Height: c.Output.Height}
}
