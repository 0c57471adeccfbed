package handler

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/image-handler/internal/codec"
	"github.com/ironsheep/image-handler/internal/picture"
)

// decodeStage owns one decoder built for a fixed input format.
type decodeStage struct {
	in     picture.Format
	dec    codec.Decoder
	alloc  codec.Allocator
	logger *zap.Logger
}

func newDecodeStage(lookup codec.Lookup, in picture.Format, alloc codec.Allocator, logger *zap.Logger) (*decodeStage, error) {
	dec, err := lookup.FindDecoder(in)
	if err != nil {
		logger.Error("no suitable decoder",
			zap.String("codec", string(in.Chroma)),
			zap.Error(err))
		return nil, fmt.Errorf("%w %q: %w", ErrUnsupportedCodec, in.Chroma, err)
	}
	if dec == nil {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedCodec, in.Chroma)
	}
	logger.Debug("decoder created", zap.String("codec", string(in.Chroma)))
	return &decodeStage{in: in, dec: dec, alloc: alloc, logger: logger}, nil
}

// accepts reports whether the stage can serve input format in.
func (s *decodeStage) accepts(in picture.Format) bool {
	return s.in.Chroma == in.Chroma
}

// decode runs block through the decoder. The decoder is always called twice
// with the same block: some backends only hand out a picture on the second
// call, when the submission acts as a flush.
func (s *decodeStage) decode(block *picture.Block) (*picture.Picture, error) {
	pic, err := s.dec.Decode(block, s.alloc)
	flushed, flushErr := s.dec.Decode(block, s.alloc)

	if err != nil {
		if pic != nil {
			pic.Release()
		}
		if flushed != nil {
			flushed.Release()
		}
		return nil, s.decodeError(err)
	}

	switch {
	case pic == nil && flushErr != nil:
		return nil, s.decodeError(flushErr)
	case pic == nil:
		pic = flushed
	case flushed != nil:
		flushed.Release()
	case flushErr != nil:
		s.logger.Debug("flush after decode failed", zap.Error(flushErr))
	}

	if pic == nil {
		s.logger.Debug("no image decoded", zap.String("codec", string(s.in.Chroma)))
		return nil, fmt.Errorf("%w from %q block", ErrNoImageProduced, s.in.Chroma)
	}
	return pic, nil
}

// decodeError keeps allocation failures distinct and reports anything else
// the decoder rejects as no image.
func (s *decodeStage) decodeError(err error) error {
	if errors.Is(err, picture.ErrAllocation) {
		return err
	}
	s.logger.Debug("decoder rejected block", zap.String("codec", string(s.in.Chroma)), zap.Error(err))
	return fmt.Errorf("%w from %q block: %w", ErrNoImageProduced, s.in.Chroma, err)
}

// outputFormat is the format of the last decoded picture.
func (s *decodeStage) outputFormat() picture.Format {
	return s.dec.OutputFormat()
}

func (s *decodeStage) destroy() {
	if err := s.dec.Close(); err != nil {
		s.logger.Warn("failed to close decoder", zap.String("codec", string(s.in.Chroma)), zap.Error(err))
	}
	s.dec = nil
}
