package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// formatProperties are the requested-output arguments shared by the read tools.
func formatProperties() map[string]interface{} {
	return map[string]interface{}{
		"codec": map[string]interface{}{
			"type":        "string",
			"description": "Input codec or raw chroma (png, jpeg, gif, bmp, tiff, webp, I420, GREY, ...). Detected from the data when omitted.",
		},
		"chroma": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"", "I420", "I422", "I444", "GREY", "RGBA"},
			"description": "Requested output chroma. Omit to keep what the decoder produced.",
		},
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Requested output width. 0 keeps the decoded width.",
			"default":     0,
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Requested output height. 0 keeps the decoded height.",
			"default":     0,
		},
		"aspect": map[string]interface{}{
			"type":        "number",
			"description": "Requested display aspect ratio. 0 keeps the source aspect.",
			"default":     0,
		},
		"preview": map[string]interface{}{
			"type":        "boolean",
			"description": "Also return the output picture as a base64-encoded PNG.",
			"default":     false,
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_read",
			Description: "Decode an image file and convert it to the requested raw pixel format. Returns the resulting format and plane layout. Files compressed with zstd are accepted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(formatProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_read_base64",
			Description: "Decode base64-encoded image bytes and convert them to the requested raw pixel format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(formatProperties(), map[string]interface{}{
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes",
					},
				}),
				"required": []string{"data"},
			},
		},
		{
			Name:        "image_write",
			Description: "Encode a picture to a file. Encoding is not supported and this tool always fails.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the file to write",
					},
					"codec": map[string]interface{}{
						"type":        "string",
						"description": "Target codec",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_ocr",
			Description: "Decode an image file and extract its text with Tesseract. Returns the full text and word bounding boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"codec": map[string]interface{}{
						"type":        "string",
						"description": "Input codec. Detected from the data when omitted.",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Defaults to the configured language.",
					},
					"region": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required":    []string{"x1", "y1", "x2", "y2"},
						"description": "Optional region to read. If omitted, reads the entire image.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_formats",
			Description: "List the input codecs that can be decoded and the raw chromas a picture can be converted to.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
