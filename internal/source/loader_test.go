package source

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/image-handler/internal/picture"
)

// writeFile stores data in a temp file and returns its path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// pngBytes encodes a small solid image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 16; i++ {
		img.Set(i%4, i/4, color.RGBA{10, 20, 30, 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create zstd encoder: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestNewLoader_DefaultLimit(t *testing.T) {
	if got := NewLoader(0).MaxBytes(); got != DefaultMaxBytes {
		t.Errorf("MaxBytes: got %d, want %d", got, DefaultMaxBytes)
	}
	if got := NewLoader(10).MaxBytes(); got != 10 {
		t.Errorf("MaxBytes: got %d, want 10", got)
	}
}

func TestReadAll_Plain(t *testing.T) {
	want := pngBytes(t)
	path := writeFile(t, "plain.png", want)

	got, err := NewLoader(0).ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("content differs from file")
	}
}

func TestReadAll_Zstd(t *testing.T) {
	want := pngBytes(t)
	path := writeFile(t, "packed.png.zst", compress(t, want))

	got, err := NewLoader(0).ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("decompressed content differs from original")
	}
	if Sniff(got) != picture.CodecPNG {
		t.Errorf("Sniff: got %q, want png", Sniff(got))
	}
}

func TestReadAll_TooLarge(t *testing.T) {
	path := writeFile(t, "big.bin", make([]byte, 100))

	_, err := NewLoader(50).ReadAll(path)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error: got %v, want ErrTooLarge", err)
	}
}

func TestReadAll_ZstdTooLarge(t *testing.T) {
	path := writeFile(t, "bomb.zst", compress(t, make([]byte, 4096)))

	_, err := NewLoader(1024).ReadAll(path)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error: got %v, want ErrTooLarge", err)
	}
}

func TestReadAll_CorruptZstd(t *testing.T) {
	data := append(append([]byte{}, zstdMagic...), 0xde, 0xad, 0xbe, 0xef)
	path := writeFile(t, "corrupt.zst", data)

	if _, err := NewLoader(0).ReadAll(path); err == nil {
		t.Error("ReadAll should fail on a corrupt zstd stream")
	}
}

func TestReadAll_Missing(t *testing.T) {
	_, err := NewLoader(0).ReadAll(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("ReadAll should fail for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want picture.Chroma
	}{
		{"png", []byte("\x89PNG\r\n\x1a\nrest"), picture.CodecPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, picture.CodecJPEG},
		{"gif87", []byte("GIF87a..."), picture.CodecGIF},
		{"gif89", []byte("GIF89a..."), picture.CodecGIF},
		{"bmp", []byte("BM\x00\x00"), picture.CodecBMP},
		{"tiff le", []byte("II*\x00...."), picture.CodecTIFF},
		{"tiff be", []byte("MM\x00*...."), picture.CodecTIFF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), picture.CodecWebP},
		{"riff not webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), ""},
		{"empty", nil, ""},
		{"text", []byte("hello"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff: got %q, want %q", got, tt.want)
			}
		})
	}
}
