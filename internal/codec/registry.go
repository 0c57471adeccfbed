package codec

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/ironsheep/image-handler/internal/picture"
)

// DecoderFactory builds a decoder for an input format.
type DecoderFactory func(in picture.Format) (Decoder, error)

// Registry maps codecs to decoder factories and builds converters.
//
// Registry is safe for concurrent use. The decoders and converters it hands
// out are not.
type Registry struct {
	mu        sync.RWMutex
	decoders  map[picture.Chroma]DecoderFactory
	maxPixels int64
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxPixels caps the resolution of every picture the built-in backends
// decode or convert to. The default is picture.DefaultMaxPixels.
func WithMaxPixels(n int64) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// imageCodec is a container format the image packages can read.
type imageCodec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// NewRegistry returns a registry with every built-in backend registered.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		decoders:  make(map[picture.Chroma]DecoderFactory),
		maxPixels: picture.DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(r)
	}

	builtin := map[picture.Chroma]imageCodec{
		picture.CodecPNG:  {png.Decode, png.DecodeConfig},
		picture.CodecJPEG: {jpeg.Decode, jpeg.DecodeConfig},
		picture.CodecGIF:  {gif.Decode, gif.DecodeConfig},
		picture.CodecBMP:  {bmp.Decode, bmp.DecodeConfig},
		picture.CodecTIFF: {tiff.Decode, tiff.DecodeConfig},
		picture.CodecWebP: {webp.Decode, webp.DecodeConfig},
	}
	for c, ic := range builtin {
		r.decoders[c] = imageDecoderFactory(c, ic, r.maxPixels)
	}
	for _, c := range picture.RawChromas() {
		r.decoders[c] = rawDecoderFactory(r.maxPixels)
	}
	return r
}

// MaxPixels returns the resolution cap of the built-in backends.
func (r *Registry) MaxPixels() int64 {
	return r.maxPixels
}

// RegisterDecoder installs factory for codec, replacing any existing one.
func (r *Registry) RegisterDecoder(codec picture.Chroma, factory DecoderFactory) {
	r.mu.Lock()
	r.decoders[codec] = factory
	r.mu.Unlock()
}

// Codecs returns the registered input codecs, sorted.
func (r *Registry) Codecs() []picture.Chroma {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]picture.Chroma, 0, len(r.decoders))
	for c := range r.decoders {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FindDecoder returns a decoder for in.Chroma.
func (r *Registry) FindDecoder(in picture.Format) (Decoder, error) {
	r.mu.RLock()
	factory, ok := r.decoders[in.Chroma]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoDecoder, in.Chroma)
	}
	return factory(in)
}

// FindConverter returns a converter from src to dst. Both must be raw
// formats with a known resolution within the registry's pixel cap.
func (r *Registry) FindConverter(src, dst picture.Format) (Converter, error) {
	return newPictureConverter(src, dst, r.maxPixels)
}
