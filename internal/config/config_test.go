package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/image-handler/internal/picture"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSampleConfig_MatchesDefault(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal([]byte(SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("sample config: got %+v, want %+v", cfg, Default())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"

[output]
chroma = "I420"
width = 320
height = 240
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("log.level: got %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.MaxSizeMB != 100 {
		t.Errorf("unset values should keep defaults, got max_size_mb %d", cfg.Log.MaxSizeMB)
	}
	want := picture.Format{Chroma: picture.ChromaI420, Width: 320, Height: 240}
	if got := cfg.OutputFormat(); got != want {
		t.Errorf("OutputFormat: got %+v, want %+v", got, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("IMAGE_HANDLER_LOG_LEVEL", "warn")
	t.Setenv("IMAGE_HANDLER_OUTPUT_CHROMA", "grey")
	t.Setenv("IMAGE_HANDLER_OUTPUT_WIDTH", "64")
	t.Setenv("IMAGE_HANDLER_SOURCE_MAX_BYTES", "2048")
	t.Setenv("IMAGE_HANDLER_OUTPUT_MAX_PIXELS", "4096")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("log.level: got %q, want warn", cfg.Log.Level)
	}
	if cfg.Source.MaxBytes != 2048 {
		t.Errorf("source.max_bytes: got %d, want 2048", cfg.Source.MaxBytes)
	}
	if cfg.Output.MaxPixels != 4096 {
		t.Errorf("output.max_pixels: got %d, want 4096", cfg.Output.MaxPixels)
	}
	want := picture.Format{Chroma: picture.ChromaGrey, Width: 64}
	if got := cfg.OutputFormat(); got != want {
		t.Errorf("OutputFormat: got %+v, want %+v", got, want)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := Default()
	lookup := func(key string) (string, bool) {
		if key == "IMAGE_HANDLER_OUTPUT_HEIGHT" {
			return "tall", true
		}
		return "", false
	}
	err := cfg.applyEnv(lookup)
	if err == nil || !strings.Contains(err.Error(), "IMAGE_HANDLER_OUTPUT_HEIGHT") {
		t.Errorf("error: got %v, want one naming IMAGE_HANDLER_OUTPUT_HEIGHT", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative max bytes", func(c *Config) { c.Source.MaxBytes = -1 }},
		{"negative width", func(c *Config) { c.Output.Width = -5 }},
		{"unknown chroma", func(c *Config) { c.Output.Chroma = "NV12" }},
		{"codec chroma", func(c *Config) { c.Output.Chroma = "png" }},
		{"zero max pixels", func(c *Config) { c.Output.MaxPixels = 0 }},
		{"default size over max pixels", func(c *Config) {
			c.Output.Width, c.Output.Height, c.Output.MaxPixels = 100, 100, 9999
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "warning", "WARNING", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Level = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate(%q) failed: %v", level, err)
			}
		})
	}
}
