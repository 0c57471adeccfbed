package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"

	"go.uber.org/zap"

	"github.com/ironsheep/image-handler/internal/handler"
	"github.com/ironsheep/image-handler/internal/ocr"
	"github.com/ironsheep/image-handler/internal/picture"
	"github.com/ironsheep/image-handler/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_read").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_read":
		return s.handleImageRead(args)
	case "image_read_base64":
		return s.handleImageReadBase64(args)
	case "image_write":
		return s.handleImageWrite(args)
	case "image_ocr":
		return s.handleImageOCR(args)
	case "image_formats":
		return s.handleImageFormats()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Read Handlers ===

type formatArgs struct {
	Codec   string  `json:"codec"`
	Chroma  string  `json:"chroma"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Aspect  float64 `json:"aspect"`
	Preview bool    `json:"preview"`
}

// requested merges the caller's output arguments over the configured default.
func (s *Server) requested(a formatArgs) (picture.Format, error) {
	out := s.cfg.OutputFormat()
	if a.Chroma != "" {
		chroma, err := picture.ParseChroma(a.Chroma)
		if err != nil {
			return picture.Format{}, err
		}
		if !chroma.IsRaw() {
			return picture.Format{}, fmt.Errorf("chroma %q is not a raw pixel format", a.Chroma)
		}
		out.Chroma = chroma
	}
	if a.Width < 0 || a.Height < 0 {
		return picture.Format{}, errors.New("width and height must not be negative")
	}
	if a.Width > 0 {
		out.Width = a.Width
	}
	if a.Height > 0 {
		out.Height = a.Height
	}
	out.Aspect = a.Aspect
	return out, nil
}

// inputFormat resolves the input codec, sniffing data when none was given.
func inputFormat(codecName string, data []byte) (picture.Format, error) {
	chroma, err := picture.ParseChroma(codecName)
	if err != nil {
		return picture.Format{}, err
	}
	if chroma == "" {
		chroma = source.Sniff(data)
	}
	if chroma == "" {
		return picture.Format{}, errors.New("could not detect the image codec; pass codec explicitly")
	}
	return picture.Format{Chroma: chroma}, nil
}

type planeInfo struct {
	Pitch int `json:"pitch"`
	Lines int `json:"lines"`
}

type readResult struct {
	Codec   picture.Chroma `json:"codec"`
	Format  picture.Format `json:"format"`
	Bytes   int            `json:"bytes"`
	Planes  []planeInfo    `json:"planes"`
	Preview string         `json:"preview,omitempty"`
}

// describe builds the tool result for pic and releases it.
func describe(codecName picture.Chroma, pic *picture.Picture, format picture.Format, preview bool) (*readResult, error) {
	defer pic.Release()

	result := &readResult{
		Codec:  codecName,
		Format: format,
		Bytes:  pic.Size(),
		Planes: make([]planeInfo, 0, len(pic.Planes)),
	}
	for _, p := range pic.Planes {
		result.Planes = append(result.Planes, planeInfo{Pitch: p.Pitch, Lines: p.Lines})
	}

	if preview {
		encoded, err := encodePreview(pic.Image())
		if err != nil {
			return nil, err
		}
		result.Preview = encoded
	}
	return result, nil
}

func encodePreview(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("picture has no image view")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type imageReadArgs struct {
	Path string `json:"path"`
	formatArgs
}

// readPath decodes the file at path. With an explicit codec the handler loads
// the file itself; otherwise the bytes are loaded first so the codec can be
// detected.
func (s *Server) readPath(path, codecName string, out picture.Format) (*picture.Picture, picture.Format, picture.Chroma, error) {
	if path == "" {
		return nil, picture.Format{}, "", errors.New("path is required")
	}

	if codecName != "" {
		in, err := inputFormat(codecName, nil)
		if err != nil {
			return nil, picture.Format{}, "", err
		}
		pic, format, err := s.handler.ReadFile(path, in, out)
		return pic, format, in.Chroma, err
	}

	data, err := s.loader.ReadAll(path)
	if err != nil {
		return nil, picture.Format{}, "", fmt.Errorf("%w %s: %w", handler.ErrIO, path, err)
	}
	in, err := inputFormat("", data)
	if err != nil {
		return nil, picture.Format{}, "", err
	}
	pic, format, err := s.handler.Read(data, in, out)
	return pic, format, in.Chroma, err
}

func (s *Server) handleImageRead(args json.RawMessage) (interface{}, error) {
	var a imageReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out, err := s.requested(a.formatArgs)
	if err != nil {
		return nil, err
	}

	pic, format, codecName, err := s.readPath(a.Path, a.Codec, out)
	if err != nil {
		return nil, err
	}
	return describe(codecName, pic, format, a.Preview)
}

type imageReadBase64Args struct {
	Data string `json:"data"`
	formatArgs
}

func (s *Server) handleImageReadBase64(args json.RawMessage) (interface{}, error) {
	var a imageReadBase64Args
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	out, err := s.requested(a.formatArgs)
	if err != nil {
		return nil, err
	}
	in, err := inputFormat(a.Codec, data)
	if err != nil {
		return nil, err
	}

	pic, format, err := s.handler.Read(data, in, out)
	if err != nil {
		return nil, err
	}
	return describe(in.Chroma, pic, format, a.Preview)
}

// === Write Handler ===

type imageWriteArgs struct {
	Path  string `json:"path"`
	Codec string `json:"codec"`
}

func (s *Server) handleImageWrite(args json.RawMessage) (interface{}, error) {
	var a imageWriteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out := picture.Format{Chroma: picture.Chroma(a.Codec)}
	return nil, s.handler.WriteFile(nil, picture.Format{}, out, a.Path)
}

// === OCR Handler ===

type ocrRegion struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type imageOCRArgs struct {
	Path     string     `json:"path"`
	Codec    string     `json:"codec"`
	Language string     `json:"language"`
	Region   *ocrRegion `json:"region"`
}

func (s *Server) handleImageOCR(args json.RawMessage) (interface{}, error) {
	var a imageOCRArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.OCR.Language
	}

	// Tesseract works on luma, so ask for GREY at the decoded size.
	pic, _, _, err := s.readPath(a.Path, a.Codec, picture.Format{Chroma: picture.ChromaGrey})
	if err != nil {
		return nil, err
	}
	defer pic.Release()

	if a.Region != nil {
		rect := image.Rect(a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2)
		return ocr.RecognizeRegion(pic, rect, a.Language)
	}
	return ocr.Recognize(pic, a.Language)
}

// === Format Listing ===

type formatsResult struct {
	Codecs  []picture.Chroma `json:"codecs"`
	Chromas []picture.Chroma `json:"chromas"`
}

func (s *Server) handleImageFormats() (interface{}, error) {
	return &formatsResult{
		Codecs:  s.registry.Codecs(),
		Chromas: picture.RawChromas(),
	}, nil
}
