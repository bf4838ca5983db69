// Package bundle enumerates the files of multi-file containers such as ZIP, tar, RAR, and 7z.
//
// A bundle is typically a Workshop mirror download or a backup holding several addons. Only reading is supported.
package bundle

import (
	"errors"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/nguyengg/gmad/codec"
)

// ErrNotReaderAt is returned by formats whose central directory sits at the end of the file if the source does not
// implement io.ReaderAt.
var ErrNotReaderAt = errors.New("source must implement io.ReaderAt")

// Bundle reads the files of a container.
//
// All implementations are not thread-safe.
type Bundle interface {
	// Entries produces an iterator returning the regular files from the container read from src.
	//
	// The size of src is required by formats that must read their index from the end of the file (ZIP and 7z); those
	// formats also require src to implement io.ReaderAt. Streaming formats ignore size. Each Entry is only valid until
	// the iterator advances.
	Entries(src io.Reader, size int64) iter.Seq2[Entry, error]

	// Ext returns the canonical extension of this container format.
	Ext() string
}

// Entry is a file in a container.
type Entry interface {
	// Name returns the full slash-separated name of the file in the container.
	Name() string
	// FileInfo returns description about the file.
	FileInfo() os.FileInfo
	// Open opens the file for reading.
	Open() (io.ReadCloser, error)
}

// ForExt returns the Bundle for the given (possibly compound) file extension.
//
// Matching is case-insensitive. Returns false if the extension does not belong to a known container format.
func ForExt(ext string) (Bundle, bool) {
	switch ext = strings.ToLower(ext); ext {
	case ".zip":
		return Zip{}, true
	case ".7z":
		return SevenZip{}, true
	case ".rar":
		return Rar{}, true
	case ".tar":
		return Tar{}, true
	case ".tgz":
		return Tar{Codec: codec.Gzip{}}, true
	}

	if inner, outer, ok := strings.Cut(ext, ".tar."); ok && inner == "" {
		if c, ok := codec.ForExt("." + outer); ok {
			return Tar{Codec: c}, true
		}
	}

	return nil, false
}
