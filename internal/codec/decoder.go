package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/ironsheep/image-handler/internal/picture"
)

// imageDecoder wraps a standard image.Decode-style function.
type imageDecoder struct {
	codec     picture.Chroma
	ic        imageCodec
	maxPixels int64
	out       picture.Format
	last      *picture.Block
}

func imageDecoderFactory(codec picture.Chroma, ic imageCodec, maxPixels int64) DecoderFactory {
	return func(in picture.Format) (Decoder, error) {
		return &imageDecoder{codec: codec, ic: ic, maxPixels: maxPixels}, nil
	}
}

func (d *imageDecoder) Decode(block *picture.Block, alloc Allocator) (*picture.Picture, error) {
	// Nothing is ever buffered, so a repeated block is an empty flush.
	if block == nil || block == d.last {
		return nil, nil
	}
	d.last = block

	// The header is enough to refuse a picture too large to hold.
	cfg, err := d.ic.decodeConfig(bytes.NewReader(block.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s header: %w", d.codec, err)
	}
	if !(picture.Format{Width: cfg.Width, Height: cfg.Height}).Fits(d.maxPixels) {
		return nil, fmt.Errorf("%w: %s image is %dx%d, over the %d pixel limit",
			picture.ErrAllocation, d.codec, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, err := d.ic.decode(bytes.NewReader(block.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.codec, err)
	}

	b := img.Bounds()
	format := picture.Format{Chroma: nativeChroma(img), Width: b.Dx(), Height: b.Dy()}
	format.Aspect = format.SquareAspect()

	pic, err := alloc(format)
	if err != nil {
		return nil, err
	}
	if err := importImage(pic, img); err != nil {
		pic.Release()
		return nil, err
	}

	d.out = pic.Format
	return pic, nil
}

func (d *imageDecoder) OutputFormat() picture.Format { return d.out }

func (d *imageDecoder) Close() error {
	d.last = nil
	return nil
}

// nativeChroma picks the raw layout closest to what the codec produced.
func nativeChroma(img image.Image) picture.Chroma {
	switch m := img.(type) {
	case *image.YCbCr:
		switch m.SubsampleRatio {
		case image.YCbCrSubsampleRatio420:
			return picture.ChromaI420
		case image.YCbCrSubsampleRatio422:
			return picture.ChromaI422
		default:
			return picture.ChromaI444
		}
	case *image.Gray, *image.Gray16:
		return picture.ChromaGrey
	default:
		return picture.ChromaRGBA
	}
}

// rawDecoder reads tightly packed planes of a raw chroma. The resolution
// comes with each block, so one decoder serves every size of its chroma.
type rawDecoder struct {
	in        picture.Format
	maxPixels int64
	out       picture.Format
	last      *picture.Block
}

func rawDecoderFactory(maxPixels int64) DecoderFactory {
	return func(in picture.Format) (Decoder, error) {
		if !in.Chroma.IsRaw() || in.Width <= 0 || in.Height <= 0 {
			return nil, fmt.Errorf("%w: raw input needs chroma and size, got %s", ErrNoDecoder, in)
		}
		return &rawDecoder{in: in, maxPixels: maxPixels}, nil
	}
}

func (d *rawDecoder) Decode(block *picture.Block, alloc Allocator) (*picture.Picture, error) {
	if block == nil || block == d.last {
		return nil, nil
	}
	d.last = block

	// Blocks built without a format are read at the size the decoder was
	// created for.
	format := block.Format
	if format.Chroma == "" {
		format = d.in
	}
	if format.Chroma != d.in.Chroma {
		return nil, fmt.Errorf("%s decoder cannot read a %s block", d.in.Chroma, format.Chroma)
	}
	if format.Width <= 0 || format.Height <= 0 {
		return nil, fmt.Errorf("raw %s block needs a size, got %s", format.Chroma, format)
	}
	if !format.Fits(d.maxPixels) {
		return nil, fmt.Errorf("%w: raw %s is over the %d pixel limit", picture.ErrAllocation, format, d.maxPixels)
	}

	pic, err := alloc(format)
	if err != nil {
		return nil, err
	}
	if need := pic.Size(); len(block.Data) != need {
		pic.Release()
		return nil, fmt.Errorf("raw %s block holds %d bytes, need %d", format, len(block.Data), need)
	}

	off := 0
	for _, pl := range pic.Planes {
		off += copy(pl.Pixels, block.Data[off:off+len(pl.Pixels)])
	}
	d.out = pic.Format
	return pic, nil
}

func (d *rawDecoder) OutputFormat() picture.Format {
	if d.out.Chroma != "" {
		return d.out
	}
	out := d.in
	if out.Aspect == 0 {
		out.Aspect = out.SquareAspect()
	}
	return out
}

func (d *rawDecoder) Close() error {
	d.last = nil
	return nil
}
