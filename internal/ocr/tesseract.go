package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/image-handler/internal/picture"
)

// ErrReleased is returned when asked to read a picture that was already released.
var ErrReleased = errors.New("picture already released")

// Bounds is a rectangle in picture pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognized word with its location.
type Word struct {
	Text string `json:"text"`

	// Confidence runs from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result holds the text found in a picture.
type Result struct {
	// Text is the full recognized text with line breaks preserved.
	Text string `json:"text"`

	// Words may be empty when the engine cannot report boxes; Text is still set.
	Words []Word `json:"words"`
}

// Recognize runs Tesseract over the whole picture. The picture is only read;
// ownership stays with the caller.
func Recognize(pic *picture.Picture, language string) (*Result, error) {
	img, err := pictureImage(pic)
	if err != nil {
		return nil, err
	}
	return recognizeImage(img, language)
}

// RecognizeRegion runs Tesseract over the part of pic inside region. Word
// bounds in the result are in whole-picture coordinates.
func RecognizeRegion(pic *picture.Picture, region image.Rectangle, language string) (*Result, error) {
	img, err := pictureImage(pic)
	if err != nil {
		return nil, err
	}

	clipped := region.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v lies outside the %dx%d picture", region, pic.Format.Width, pic.Format.Height)
	}
	region = clipped

	result, err := recognizeImage(imaging.Crop(img, region), language)
	if err != nil {
		return nil, err
	}

	for i := range result.Words {
		result.Words[i].Bounds.X1 += region.Min.X
		result.Words[i].Bounds.Y1 += region.Min.Y
		result.Words[i].Bounds.X2 += region.Min.X
		result.Words[i].Bounds.Y2 += region.Min.Y
	}
	return result, nil
}

// Info describes the OCR engine.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
}

// EngineInfo reports whether Tesseract can be used.
func EngineInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Info{
		Available: version != "",
		Version:   version,
		Backend:   "gosseract",
	}
}

func pictureImage(pic *picture.Picture) (image.Image, error) {
	if pic == nil || pic.Released() {
		return nil, ErrReleased
	}
	img := pic.Image()
	if img == nil {
		return nil, fmt.Errorf("no image view for chroma %s", pic.Format.Chroma)
	}
	return img, nil
}

func recognizeImage(img image.Image, language string) (*Result, error) {
	// Tesseract takes encoded images, so hand it a PNG.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &Result{Text: text, Words: []Word{}}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &Result{Text: text, Words: words}, nil
}
