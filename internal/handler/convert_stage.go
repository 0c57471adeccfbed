package handler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/image-handler/internal/codec"
	"github.com/ironsheep/image-handler/internal/picture"
)

// convertStage owns one converter built for a fixed source/target pair.
type convertStage struct {
	src    picture.Format
	dst    picture.Format
	conv   codec.Converter
	alloc  codec.Allocator
	logger *zap.Logger
}

func newConvertStage(lookup codec.Lookup, src, dst picture.Format, alloc codec.Allocator, logger *zap.Logger) (*convertStage, error) {
	conv, err := lookup.FindConverter(src, dst)
	if err != nil {
		logger.Debug("no converter found",
			zap.Stringer("from", src),
			zap.Stringer("to", dst),
			zap.Error(err))
		return nil, fmt.Errorf("%w from %s to %s: %w", ErrUnsupportedConversion, src, dst, err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w from %s to %s", ErrUnsupportedConversion, src, dst)
	}
	logger.Debug("converter created", zap.Stringer("from", src), zap.Stringer("to", dst))
	return &convertStage{src: src, dst: dst, conv: conv, alloc: alloc, logger: logger}, nil
}

// accepts reports whether the stage was built for exactly this pair. Only
// chroma, width and height take part.
func (s *convertStage) accepts(src, dst picture.Format) bool {
	return s.src.Equal(src) && s.dst.Equal(dst)
}

// convert consumes pic: it belongs to the stage from this call on, and is
// released here if the converter fails and hands it back.
func (s *convertStage) convert(pic *picture.Picture) (*picture.Picture, picture.Format, error) {
	out, err := s.conv.Convert(pic, s.alloc)
	if err != nil {
		pic.Release()
		return nil, picture.Format{}, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if out == nil {
		// The converter took pic and produced nothing.
		return nil, picture.Format{}, fmt.Errorf("%w: converter produced no picture", ErrConversionFailed)
	}
	return out, s.conv.OutputFormat(), nil
}

func (s *convertStage) destroy() {
	if err := s.conv.Close(); err != nil {
		s.logger.Warn("failed to close converter", zap.Stringer("from", s.src), zap.Stringer("to", s.dst), zap.Error(err))
	}
	s.conv = nil
}
