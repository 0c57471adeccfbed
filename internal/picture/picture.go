package picture

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"
)

// ErrAllocation is returned when a format yields no usable planes.
var ErrAllocation = errors.New("picture: allocation failed")

// DefaultMaxPixels is the largest resolution Allocate accepts: 8192x8192.
const DefaultMaxPixels int64 = 1 << 26

// Plane is one block of pixel memory. Pitch is the number of bytes per line.
type Plane struct {
	Pixels []byte
	Pitch  int
	Lines  int
}

// Picture is an owned set of pixel planes in a known Format.
//
// A Picture has exactly one owner at a time and must be released exactly
// once by its final owner. Releasing twice panics.
type Picture struct {
	Format Format
	Planes []Plane

	released bool
	hooks    []func(*Picture)
}

// Allocate returns a zeroed picture laid out for format, with at most
// DefaultMaxPixels pixels.
//
// Returns ErrAllocation if the chroma is not a raw layout or the resolution
// is not positive; no picture is returned in that case.
func Allocate(format Format) (*Picture, error) {
	return AllocateLimited(format, DefaultMaxPixels)
}

// AllocateLimited is Allocate with a caller-chosen pixel limit. Formats over
// the limit yield ErrAllocation before any memory is reserved.
func AllocateLimited(format Format, maxPixels int64) (*Picture, error) {
	layout, ok := layouts[format.Chroma]
	if !ok || format.Width <= 0 || format.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrAllocation, format)
	}
	if !format.Fits(maxPixels) {
		return nil, fmt.Errorf("%w: %s is over the %d pixel limit", ErrAllocation, format, maxPixels)
	}

	planes := make([]Plane, 0, len(layout))
	for _, l := range layout {
		w := (format.Width + l.xDiv - 1) / l.xDiv
		h := (format.Height + l.yDiv - 1) / l.yDiv
		if int64(w)*int64(l.bytesPerElem) > math.MaxInt/int64(h) {
			return nil, fmt.Errorf("%w: %s plane size overflows", ErrAllocation, format)
		}
		pitch := w * l.bytesPerElem
		planes = append(planes, Plane{
			Pixels: make([]byte, pitch*h),
			Pitch:  pitch,
			Lines:  h,
		})
	}
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAllocation, format)
	}

	if format.Aspect == 0 {
		format.Aspect = format.SquareAspect()
	}
	return &Picture{Format: format, Planes: planes}, nil
}

// OnRelease registers fn to run when the picture is released. Hooks run in
// registration order.
func (p *Picture) OnRelease(fn func(*Picture)) {
	p.hooks = append(p.hooks, fn)
}

// Release hands the picture's memory back. It must be called exactly once.
func (p *Picture) Release() {
	if p.released {
		panic(fmt.Sprintf("picture: %s released twice", p.Format))
	}
	p.released = true
	for _, fn := range p.hooks {
		fn(p)
	}
	p.hooks = nil
	p.Planes = nil
}

// Released reports whether Release has been called.
func (p *Picture) Released() bool {
	return p.released
}

// Size returns the total number of pixel bytes across all planes.
func (p *Picture) Size() int {
	n := 0
	for _, pl := range p.Planes {
		n += len(pl.Pixels)
	}
	return n
}

// Image returns a view of the planes as a standard library image. The view
// shares memory with the picture and is invalid once the picture is released.
//
// Returns nil for released pictures.
func (p *Picture) Image() image.Image {
	if p.released {
		return nil
	}
	rect := image.Rect(0, 0, p.Format.Width, p.Format.Height)

	switch p.Format.Chroma {
	case ChromaI420, ChromaI422, ChromaI444:
		ratio := image.YCbCrSubsampleRatio444
		switch p.Format.Chroma {
		case ChromaI420:
			ratio = image.YCbCrSubsampleRatio420
		case ChromaI422:
			ratio = image.YCbCrSubsampleRatio422
		}
		return &image.YCbCr{
			Y:              p.Planes[0].Pixels,
			Cb:             p.Planes[1].Pixels,
			Cr:             p.Planes[2].Pixels,
			YStride:        p.Planes[0].Pitch,
			CStride:        p.Planes[1].Pitch,
			SubsampleRatio: ratio,
			Rect:           rect,
		}
	case ChromaGrey:
		return &image.Gray{Pix: p.Planes[0].Pixels, Stride: p.Planes[0].Pitch, Rect: rect}
	case ChromaRGBA:
		return &image.RGBA{Pix: p.Planes[0].Pixels, Stride: p.Planes[0].Pitch, Rect: rect}
	}
	return nil
}

// Block is one encoded still image submitted to a decoder. The bytes are not
// modified once the block is built.
//
// Format is the input format the bytes are encoded in. Raw layouts carry no
// header, so their decoders take the resolution from it on every block.
//
// PTS and DTS only exist to satisfy decoder timing contracts; a still image
// has no timeline of its own.
type Block struct {
	Data   []byte
	Format Format
	PTS    time.Time
	DTS    time.Time
}

// NewBlock wraps data in a block stamped with now for both timestamps.
func NewBlock(data []byte, now time.Time) *Block {
	return &Block{Data: data, PTS: now, DTS: now}
}
