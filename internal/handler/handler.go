package handler

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/image-handler/internal/codec"
	"github.com/ironsheep/image-handler/internal/picture"
)

// Handler decodes still images and converts them to a requested format.
//
// A Handler keeps at most one decoding stage and one conversion stage alive
// between calls and rebuilds them only when the formats of a request no
// longer match. It is not safe for concurrent use; give each concurrent
// request stream its own Handler.
type Handler struct {
	lookup   codec.Lookup
	logger   *zap.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
	alloc    codec.Allocator

	dec  *decodeStage
	conv *convertStage
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp submitted blocks.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithFileReader sets how ReadFile loads a source file. The default is
// os.ReadFile.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(h *Handler) {
		if read != nil {
			h.readFile = read
		}
	}
}

// WithMaxPixels caps the resolution of pictures the handler allocates for
// its backends. The default is picture.DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.alloc = func(f picture.Format) (*picture.Picture, error) {
				return picture.AllocateLimited(f, n)
			}
		}
	}
}

// New returns a Handler that finds its backends through lookup.
func New(lookup codec.Lookup, opts ...Option) *Handler {
	h := &Handler{
		lookup:   lookup,
		logger:   zap.NewNop(),
		now:      time.Now,
		readFile: os.ReadFile,
		alloc:    picture.Allocate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Read decodes data, encoded as in.Chroma, into a picture matching out.
//
// Zero chroma, width or height in out are taken from the decoded picture.
// The returned format is authoritative: it is the decoder's format when no
// conversion was needed and the converter's realized format otherwise.
//
// The caller owns the returned picture and must release it.
func (h *Handler) Read(data []byte, in, out picture.Format) (*picture.Picture, picture.Format, error) {
	log := h.logger.With(zap.String("request_id", uuid.NewString()))

	if h.dec != nil && !h.dec.accepts(in) {
		h.dec.destroy()
		h.dec = nil
	}
	if h.dec == nil {
		dec, err := newDecodeStage(h.lookup, in, h.alloc, h.logger)
		if err != nil {
			return nil, picture.Format{}, err
		}
		h.dec = dec
	}

	block := picture.NewBlock(data, h.now())
	block.Format = in
	pic, err := h.dec.decode(block)
	if err != nil {
		log.Debug("decode failed", zap.String("codec", string(in.Chroma)), zap.Error(err))
		return nil, picture.Format{}, err
	}

	decoded := h.dec.outputFormat()
	out = out.Resolve(decoded)

	if decoded.Equal(out) {
		log.Debug("decoded without conversion", zap.Stringer("format", decoded))
		return pic, decoded, nil
	}

	if h.conv != nil && !h.conv.accepts(decoded, out) {
		h.conv.destroy()
		h.conv = nil
	}
	if h.conv == nil {
		conv, err := newConvertStage(h.lookup, decoded, out, h.alloc, h.logger)
		if err != nil {
			pic.Release()
			return nil, picture.Format{}, err
		}
		h.conv = conv
	}

	converted, final, err := h.conv.convert(pic)
	if err != nil {
		log.Debug("conversion failed", zap.Stringer("from", decoded), zap.Stringer("to", out), zap.Error(err))
		return nil, picture.Format{}, err
	}

	log.Debug("decoded and converted", zap.Stringer("from", decoded), zap.Stringer("to", final))
	return converted, final, nil
}

// ReadFile loads path and decodes it like Read. A source that cannot be read
// yields ErrIO and no decode is attempted.
func (h *Handler) ReadFile(path string, in, out picture.Format) (*picture.Picture, picture.Format, error) {
	data, err := h.readFile(path)
	if err != nil {
		h.logger.Debug("could not open file for reading", zap.String("path", path), zap.Error(err))
		return nil, picture.Format{}, fmt.Errorf("%w %s: %w", ErrIO, path, err)
	}
	return h.Read(data, in, out)
}

// Write would encode pic into out's codec. Encoding is not implemented.
func (h *Handler) Write(pic *picture.Picture, in, out picture.Format) ([]byte, error) {
	return nil, fmt.Errorf("%w: encoding to %q", ErrNotSupported, out.Chroma)
}

// WriteFile would encode pic and store it at path. Encoding is not
// implemented.
func (h *Handler) WriteFile(pic *picture.Picture, in, out picture.Format, path string) error {
	return fmt.Errorf("%w: writing %s", ErrNotSupported, path)
}

// Close destroys the cached stages. The Handler may be reused afterwards and
// will rebuild them on demand.
func (h *Handler) Close() error {
	if h.dec != nil {
		h.dec.destroy()
		h.dec = nil
	}
	if h.conv != nil {
		h.conv.destroy()
		h.conv = nil
	}
	return nil
}
