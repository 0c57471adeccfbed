package codec

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-handler/internal/picture"
)

// importImage writes src into dst's planes, converting to dst's chroma.
// src must already have dst's resolution.
func importImage(dst *picture.Picture, src image.Image) error {
	b := src.Bounds()
	if b.Dx() != dst.Format.Width || b.Dy() != dst.Format.Height {
		return fmt.Errorf("cannot import %dx%d image into %s picture", b.Dx(), b.Dy(), dst.Format)
	}

	switch dst.Format.Chroma {
	case picture.ChromaRGBA:
		importRGBA(dst, src)
	case picture.ChromaGrey:
		importGrey(dst, src)
	case picture.ChromaI420, picture.ChromaI422, picture.ChromaI444:
		importYCbCr(dst, src)
	default:
		return fmt.Errorf("cannot import into %s picture", dst.Format)
	}
	return nil
}

func importRGBA(dst *picture.Picture, src image.Image) {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = clone.AsRGBA(src)
	}
	pl := dst.Planes[0]
	for y := 0; y < pl.Lines; y++ {
		off := rgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pl.Pixels[y*pl.Pitch:(y+1)*pl.Pitch], rgba.Pix[off:off+pl.Pitch])
	}
}

// importGrey copies grey sources sample for sample and reduces colour
// sources to their luminance, whatever their layout.
func importGrey(dst *picture.Picture, src image.Image) {
	b := src.Bounds()
	pl := dst.Planes[0]

	switch m := src.(type) {
	case *image.Gray:
		for y := 0; y < pl.Lines; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pl.Pixels[y*pl.Pitch:(y+1)*pl.Pitch], m.Pix[off:off+pl.Pitch])
		}
		return
	case *image.Gray16:
		// Samples are big-endian; keep the high byte.
		for y := 0; y < pl.Lines; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			row := pl.Pixels[y*pl.Pitch:]
			for x := 0; x < dst.Format.Width; x++ {
				row[x] = m.Pix[off+2*x]
			}
		}
		return
	}

	toGrey := luminance
	if model := src.ColorModel(); model == color.GrayModel || model == color.Gray16Model {
		toGrey = func(c color.Color) uint8 { return color.GrayModel.Convert(c).(color.Gray).Y }
	}
	for y := 0; y < pl.Lines; y++ {
		row := pl.Pixels[y*pl.Pitch:]
		for x := 0; x < dst.Format.Width; x++ {
			row[x] = toGrey(src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
}

// luminance maps a color to its relative luminance, computed in linear light
// and gamma encoded back to 0-255. Neutral greys keep their value. Fully
// transparent pixels are black.
func luminance(c color.Color) uint8 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	r, g, b := cf.LinearRgb()
	y := 0.2126*r + 0.7152*g + 0.0722*b
	v, _, _ := colorful.LinearRgb(y, y, y).Clamped().RGB255()
	return v
}

func importYCbCr(dst *picture.Picture, src image.Image) {
	b := src.Bounds()
	yPl, cbPl, crPl := dst.Planes[0], dst.Planes[1], dst.Planes[2]
	xDiv, yDiv := chromaDivisors(dst.Format.Chroma)

	if m, ok := src.(*image.YCbCr); ok && m.SubsampleRatio == subsampleRatio(dst.Format.Chroma) && b.Min.X%2 == 0 && b.Min.Y%2 == 0 {
		for y := 0; y < yPl.Lines; y++ {
			off := m.YOffset(b.Min.X, b.Min.Y+y)
			copy(yPl.Pixels[y*yPl.Pitch:(y+1)*yPl.Pitch], m.Y[off:off+yPl.Pitch])
		}
		for y := 0; y < cbPl.Lines; y++ {
			off := m.COffset(b.Min.X, b.Min.Y+y*yDiv)
			copy(cbPl.Pixels[y*cbPl.Pitch:(y+1)*cbPl.Pitch], m.Cb[off:off+cbPl.Pitch])
			copy(crPl.Pixels[y*crPl.Pitch:(y+1)*crPl.Pitch], m.Cr[off:off+crPl.Pitch])
		}
		return
	}

	// Chroma is sited at the top-left sample of each block.
	for y := 0; y < yPl.Lines; y++ {
		for x := 0; x < dst.Format.Width; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			yPl.Pixels[y*yPl.Pitch+x] = yy
			if x%xDiv == 0 && y%yDiv == 0 {
				ci := (y/yDiv)*cbPl.Pitch + x/xDiv
				cbPl.Pixels[ci] = cb
				crPl.Pixels[ci] = cr
			}
		}
	}
}

// chromaDivisors returns the horizontal and vertical chroma subsampling.
func chromaDivisors(c picture.Chroma) (int, int) {
	switch c {
	case picture.ChromaI420:
		return 2, 2
	case picture.ChromaI422:
		return 2, 1
	}
	return 1, 1
}

func subsampleRatio(c picture.Chroma) image.YCbCrSubsampleRatio {
	switch c {
	case picture.ChromaI420:
		return image.YCbCrSubsampleRatio420
	case picture.ChromaI422:
		return image.YCbCrSubsampleRatio422
	}
	return image.YCbCrSubsampleRatio444
}
