// Package codec decompresses single-stream inputs such as "addon.gma.xz".
package codec

import (
	"io"
	"strings"
)

// Codec creates decompressors/decoders.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	//
	// Closing the decoder does not close src.
	NewDecoder(src io.Reader) (io.ReadCloser, error)

	// Ext returns the extension of files compressed with this codec.
	Ext() string
}

// ForExt returns the Codec for the given file extension.
//
// The extension may be compound such as ".gma.xz" in which case only the last component is used. Matching is
// case-insensitive. Returns false if the extension does not belong to a known compression format.
func ForExt(ext string) (Codec, bool) {
	if i := strings.LastIndexByte(ext, '.'); i > 0 {
		ext = ext[i:]
	}

	switch strings.ToLower(ext) {
	case ".gz", ".gzip":
		return Gzip{}, true
	case ".xz":
		return Xz{}, true
	case ".lzma", ".bin":
		return Lzma{}, true
	case ".zst", ".zstd":
		return Zstd{}, true
	case ".lz4":
		return Lz4{}, true
	default:
		return nil, false
	}
}
