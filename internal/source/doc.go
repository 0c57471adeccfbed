// Package source loads encoded image bytes for the image handler.
//
// Loader reads a whole file into memory under a size cap and undoes zstd
// compression when the file starts with the zstd frame magic. Sniff detects
// the codec of encoded bytes so callers can leave the input codec unset.
package source
