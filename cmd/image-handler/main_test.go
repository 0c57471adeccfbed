package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// quietConfig writes a config that keeps test output free of log lines.
func quietConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "input.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "image-handler "+Version)
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"formats"}, "")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, want := range []string{"png", "jpeg", "webp", "I420", "GREY", "RGBA"} {
		requireContains(t, out, want)
	}
}

func TestReadCommand_Native(t *testing.T) {
	path := writePNG(t, 100, 80)

	out, _, err := runCLI(t, []string{"read", path}, quietConfig(t))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	requireContains(t, out, "RGBA")
	requireContains(t, out, "png")
	requireContains(t, out, "400 x 80")
}

func TestReadCommand_RawRoundTrip(t *testing.T) {
	cfg := quietConfig(t)
	path := writePNG(t, 4, 4)
	raw := filepath.Join(t.TempDir(), "out.yuv")

	out, _, err := runCLI(t, []string{"read", path, "--chroma", "I420", "--raw", raw}, cfg)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	requireContains(t, out, "I420")

	info, err := os.Stat(raw)
	if err != nil {
		t.Fatalf("raw output missing: %v", err)
	}
	if info.Size() != 4*4+2*2+2*2 {
		t.Errorf("raw size: got %d, want 24", info.Size())
	}

	out, _, err = runCLI(t, []string{
		"read", raw,
		"--codec", "I420", "--in-width", "4", "--in-height", "4",
		"--chroma", "RGBA", "--width", "8", "--height", "8",
	}, cfg)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	requireContains(t, out, "32 x 8")
}

func TestReadCommand_Errors(t *testing.T) {
	cfg := quietConfig(t)
	pngPath := writePNG(t, 2, 2)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"read", "/nonexistent/input.png"}, "could not read source"},
		{"missing file with codec", []string{"read", "/nonexistent/input.png", "--codec", "png"}, "could not read source"},
		{"bad chroma", []string{"read", pngPath, "--chroma", "NV12"}, "unknown chroma"},
		{"encoded chroma", []string{"read", pngPath, "--chroma", "jpeg"}, "not a raw pixel format"},
		{"raw without size", []string{"read", pngPath, "--codec", "GREY"}, "unsupported codec"},
		{"no args", []string{"read"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigCommands(t *testing.T) {
	out, _, err := runCLI(t, []string{"config", "sample"}, "")
	if err != nil {
		t.Fatalf("config sample: %v", err)
	}
	requireContains(t, out, "[output]")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, []string{"config", "init", target}, ""); err == nil {
		t.Error("config init should refuse to overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "ocr.language")
	requireContains(t, out, "eng")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"read", writePNG(t, 2, 2)}, path)
	if err == nil {
		t.Fatal("expected config error")
	}
	requireContains(t, err.Error(), "log.level")
}

func TestServeCommand(t *testing.T) {
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", quietConfig(t), "serve"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve: %v", err)
	}
	requireContains(t, stdout.String(), `"id":7`)
}
