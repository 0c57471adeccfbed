package codec

import (
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-handler/internal/picture"
)

// pictureConverter converts between raw chromas and rescales with a Lanczos
// filter.
type pictureConverter struct {
	src picture.Format
	out picture.Format
}

func newPictureConverter(src, dst picture.Format, maxPixels int64) (*pictureConverter, error) {
	if !src.Chroma.IsRaw() || !dst.Chroma.IsRaw() {
		return nil, fmt.Errorf("%w from %s to %s", ErrNoConverter, src, dst)
	}
	if src.Width <= 0 || src.Height <= 0 || dst.Width <= 0 || dst.Height <= 0 {
		return nil, fmt.Errorf("%w from %s to %s: size unknown", ErrNoConverter, src, dst)
	}
	if !src.Fits(maxPixels) || !dst.Fits(maxPixels) {
		return nil, fmt.Errorf("%w from %s to %s: over the %d pixel limit", ErrNoConverter, src, dst, maxPixels)
	}

	// Rescaling keeps the picture's display aspect unless one was asked for.
	out := dst
	if out.Aspect == 0 {
		out.Aspect = src.Aspect
	}
	if out.Aspect == 0 {
		out.Aspect = src.SquareAspect()
	}
	return &pictureConverter{src: src, out: out}, nil
}

func (c *pictureConverter) Convert(pic *picture.Picture, alloc Allocator) (*picture.Picture, error) {
	if !pic.Format.Equal(c.src) {
		return nil, fmt.Errorf("converter built for %s cannot take %s", c.src, pic.Format)
	}
	if c.src.Equal(c.out) {
		pic.Format.Aspect = c.out.Aspect
		return pic, nil
	}

	img := pic.Image()
	if c.src.Width != c.out.Width || c.src.Height != c.out.Height {
		img = imaging.Resize(img, c.out.Width, c.out.Height, imaging.Lanczos)
	}

	out, err := alloc(c.out)
	if err != nil {
		return nil, err
	}
	if err := importImage(out, img); err != nil {
		out.Release()
		return nil, fmt.Errorf("failed to convert %s to %s: %w", c.src, c.out, err)
	}

	// img may alias pic until the import above is done.
	pic.Release()
	return out, nil
}

func (c *pictureConverter) OutputFormat() picture.Format { return c.out }

func (c *pictureConverter) Close() error { return nil }
