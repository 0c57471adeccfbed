package picture

import "fmt"

// Chroma identifies a pixel layout or, in input formats, a compressed codec.
type Chroma string

// Raw pixel layouts.
const (
	ChromaI420 Chroma = "I420"
	ChromaI422 Chroma = "I422"
	ChromaI444 Chroma = "I444"
	ChromaGrey Chroma = "GREY"
	ChromaRGBA Chroma = "RGBA"
)

// Codec identifiers accepted as input chroma.
const (
	CodecPNG  Chroma = "png"
	CodecJPEG Chroma = "jpeg"
	CodecGIF  Chroma = "gif"
	CodecBMP  Chroma = "bmp"
	CodecTIFF Chroma = "tiff"
	CodecWebP Chroma = "webp"
)

// RawChromas lists the raw layouts in a stable order.
func RawChromas() []Chroma {
	return []Chroma{ChromaI420, ChromaI422, ChromaI444, ChromaGrey, ChromaRGBA}
}

// IsRaw reports whether c names an in-memory pixel layout.
func (c Chroma) IsRaw() bool {
	switch c {
	case ChromaI420, ChromaI422, ChromaI444, ChromaGrey, ChromaRGBA:
		return true
	}
	return false
}

// ParseChroma maps user input to a Chroma. Raw layouts are matched
// case-insensitively and codec aliases such as "jpg" are normalized.
func ParseChroma(s string) (Chroma, error) {
	switch s {
	case "":
		return "", nil
	case "I420", "i420", "yuv420", "yuv420p":
		return ChromaI420, nil
	case "I422", "i422", "yuv422", "yuv422p":
		return ChromaI422, nil
	case "I444", "i444", "yuv444", "yuv444p":
		return ChromaI444, nil
	case "GREY", "grey", "GRAY", "gray":
		return ChromaGrey, nil
	case "RGBA", "rgba":
		return ChromaRGBA, nil
	case "png", "PNG":
		return CodecPNG, nil
	case "jpeg", "jpg", "JPEG", "JPG":
		return CodecJPEG, nil
	case "gif", "GIF":
		return CodecGIF, nil
	case "bmp", "BMP":
		return CodecBMP, nil
	case "tiff", "tif", "TIFF", "TIF":
		return CodecTIFF, nil
	case "webp", "WEBP":
		return CodecWebP, nil
	}
	return "", fmt.Errorf("unknown chroma %q", s)
}

// Format describes a picture: layout, resolution and display aspect ratio.
//
// Aspect is the display aspect ratio (width/height as shown). It is carried
// along for the caller but never takes part in equality.
type Format struct {
	Chroma Chroma  `json:"chroma" toml:"chroma"`
	Width  int     `json:"width" toml:"width"`
	Height int     `json:"height" toml:"height"`
	Aspect float64 `json:"aspect,omitempty" toml:"aspect"`
}

// Equal reports whether f and o share chroma, width and height.
func (f Format) Equal(o Format) bool {
	return f.Chroma == o.Chroma && f.Width == o.Width && f.Height == o.Height
}

// Resolve returns f with wildcard chroma, width and height taken from realized.
// Explicit fields of f are kept.
func (f Format) Resolve(realized Format) Format {
	if f.Chroma == "" {
		f.Chroma = realized.Chroma
	}
	if f.Width == 0 {
		f.Width = realized.Width
	}
	if f.Height == 0 {
		f.Height = realized.Height
	}
	return f
}

// Fits reports whether f has a positive resolution of at most maxPixels
// pixels.
func (f Format) Fits(maxPixels int64) bool {
	if f.Width <= 0 || f.Height <= 0 || maxPixels <= 0 {
		return false
	}
	return int64(f.Width) <= maxPixels/int64(f.Height)
}

// SquareAspect returns the display aspect of square pixels at f's resolution,
// or 0 if the resolution is unknown.
func (f Format) SquareAspect() float64 {
	if f.Width <= 0 || f.Height <= 0 {
		return 0
	}
	return float64(f.Width) / float64(f.Height)
}

func (f Format) String() string {
	chroma := string(f.Chroma)
	if chroma == "" {
		chroma = "*"
	}
	return fmt.Sprintf("%s %dx%d", chroma, f.Width, f.Height)
}

// layouts holds the per-plane subsampling of every raw chroma.
var layouts = map[Chroma][]planeLayout{
	ChromaI420: {{1, 1, 1}, {2, 2, 1}, {2, 2, 1}},
	ChromaI422: {{1, 1, 1}, {2, 1, 1}, {2, 1, 1}},
	ChromaI444: {{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
	ChromaGrey: {{1, 1, 1}},
	ChromaRGBA: {{1, 1, 4}},
}

// planeLayout is the divisor applied to the picture size for one plane and
// the number of bytes per sample.
type planeLayout struct {
	xDiv, yDiv   int
	bytesPerElem int
}
