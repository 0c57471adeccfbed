// Package codec supplies the decoding and conversion backends used by the
// image handler, and the lookup contract the handler is written against.
//
// The handler never names a concrete backend. It asks a Lookup for a Decoder
// able to read an input codec and for a Converter able to turn one raw format
// into another. Registry is the built-in Lookup: it decodes PNG, JPEG and GIF
// with the standard library, BMP, TIFF and WebP with golang.org/x/image, raw
// planes directly, and converts between any two raw chromas with rescaling.
package codec

import (
	"errors"

	"github.com/ironsheep/image-handler/internal/picture"
)

// Lookup errors.
var (
	ErrNoDecoder   = errors.New("codec: no suitable decoder")
	ErrNoConverter = errors.New("codec: no suitable converter")
)

// Allocator hands a backend output storage for the format it settled on.
type Allocator func(picture.Format) (*picture.Picture, error)

// Decoder turns encoded blocks into pictures.
type Decoder interface {
	// Decode consumes block and returns the decoded picture, or nil when
	// nothing is ready yet. Submitting the same block again flushes any
	// picture the decoder is still holding.
	Decode(block *picture.Block, alloc Allocator) (*picture.Picture, error)

	// OutputFormat is the format of the last picture produced.
	OutputFormat() picture.Format

	Close() error
}

// Converter transforms pictures from one raw format to another.
type Converter interface {
	// Convert takes ownership of pic on success: pic is released, or
	// returned in place when no work was needed. On error the caller keeps
	// ownership of pic.
	Convert(pic *picture.Picture, alloc Allocator) (*picture.Picture, error)

	// OutputFormat is the realized format of converted pictures.
	OutputFormat() picture.Format

	Close() error
}

// Lookup finds backends for a format.
type Lookup interface {
	FindDecoder(in picture.Format) (Decoder, error)
	FindConverter(src, dst picture.Format) (Converter, error)
}
