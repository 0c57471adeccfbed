package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/image-handler/internal/picture"
)

// DefaultMaxBytes caps a source file when no limit is configured.
const DefaultMaxBytes = 64 << 20

// ErrTooLarge is returned when a source exceeds the loader's limit.
var ErrTooLarge = errors.New("source: file too large")

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Loader reads encoded image files into memory.
//
// Files compressed with zstd are decompressed transparently, so a
// "photo.jpg.zst" reads the same as "photo.jpg".
//
// Loader is stateless and safe for concurrent use.
type Loader struct {
	maxBytes int64
}

// NewLoader returns a loader refusing sources larger than maxBytes. A
// non-positive limit selects DefaultMaxBytes.
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// MaxBytes returns the loader's size limit.
func (l *Loader) MaxBytes() int64 {
	return l.maxBytes
}

// ReadAll returns the whole content of path.
//
// # Errors
//
//   - Returns an error if the file cannot be opened or read
//   - Returns ErrTooLarge if the file, or its decompressed content, exceeds
//     the limit
//   - Returns an error if a zstd stream is corrupt
func (l *Loader) ReadAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, l.maxBytes)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		return l.decompress(path, data)
	}
	return data, nil
}

func (l *Loader) decompress(path string, data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(l.maxBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %s decompresses past %d bytes", ErrTooLarge, path, l.maxBytes)
		}
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	if int64(len(out)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s decompresses past %d bytes", ErrTooLarge, path, l.maxBytes)
	}
	return out, nil
}

// Sniff guesses the codec of encoded data from its leading bytes. It returns
// the empty chroma when nothing matches.
func Sniff(data []byte) picture.Chroma {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return picture.CodecPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return picture.CodecJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return picture.CodecGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return picture.CodecBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return picture.CodecTIFF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return picture.CodecWebP
	}
	return ""
}
