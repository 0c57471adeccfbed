// Command image-handler decodes single images into raw pixel buffers.
//
// Usage:
//
//	image-handler read photo.jpg --chroma I420 --width 640
//	image-handler read frame.yuv --codec I420 --in-width 640 --in-height 480 --chroma RGBA
//	image-handler formats
//	image-handler serve
//
// The serve subcommand runs the MCP server on stdin/stdout; configure it in an
// MCP client. Logs always go to stderr.
//
// Settings come from the file named by --config, a .env file in the working
// directory and IMAGE_HANDLER_* environment variables. Run
// "image-handler config sample" for every option.
package main
