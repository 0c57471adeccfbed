// Package server implements the MCP (Model Context Protocol) server that
// exposes the image handler over stdio.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_read: Decode a file and convert it to a raw pixel format
//   - image_read_base64: Same, for inline base64 bytes
//   - image_write: Encoding; always reports that it is not supported
//   - image_ocr: Decode a file to GREY and run Tesseract over it
//   - image_formats: List input codecs and output chromas
//
// When a read omits the codec, it is detected from the file's magic bytes.
// Output fields left out fall back to the [output] section of the
// configuration, and anything still unset is taken from the decoded picture.
//
// # Handler Reuse
//
// A Server owns a single handler.Handler. Requests are processed one at a
// time, so consecutive reads of the same codec reuse the decoder, and reads
// with the same source and target format reuse the converter.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
