// Package handler implements the image handler: a decode-and-convert pipeline
// for single still images.
//
// A request flows through up to two stages:
//
//  1. A decoding stage turns the encoded bytes into a picture in whatever raw
//     format the decoder produces.
//  2. A conversion stage, only when that format differs from the requested
//     one in chroma, width or height, converts and rescales the picture.
//
// Both stages are cached on the Handler and rebuilt only when a request's
// formats no longer match them. Failures to build a stage never leave a
// stage cached, and any picture already decoded is released before an error
// is returned.
package handler
