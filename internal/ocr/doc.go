// Package ocr reads text out of decoded pictures using Tesseract.
//
// The engine is reached through gosseract/v2, so Tesseract and the language
// data for every language requested must be installed on the host:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Pictures of any raw chroma are accepted. GREY and RGBA pictures are handed
// to the engine as they are; planar YUV pictures go through their RGB view.
// The picture is never released here.
//
// If Tesseract cannot report word boxes, Recognize still returns the text
// with an empty Words slice.
package ocr
