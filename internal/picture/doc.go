// Package picture defines the pixel formats and picture buffers that flow
// through the image handler.
//
// A Picture owns its pixel planes and the Format it was produced in. Ownership
// is single-owner and move-only: whoever holds the handle releases it, exactly
// once. Handing a picture to a conversion stage transfers ownership to that
// stage; the previous holder must not touch it afterwards.
//
// # Chroma
//
// Chroma values are short fourcc-style identifiers. Raw chromas describe a
// pixel layout in memory:
//   - I420: planar YUV, chroma subsampled 2x2
//   - I422: planar YUV, chroma subsampled 2x1
//   - I444: planar YUV, no subsampling
//   - GREY: single 8-bit luma plane
//   - RGBA: packed 8-bit RGBA, alpha premultiplied
//
// Codec chromas (png, jpeg, gif, bmp, tiff, webp) only appear in input formats
// and name the compressed encoding of a Block.
//
// # Wildcards
//
// A zero field in a requested Format is a wildcard. Format.Resolve fills
// wildcards from the format a decoder actually produced.
package picture
