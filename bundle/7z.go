package bundle

import (
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/bodgit/sevenzip"
)

// SevenZip implements Bundle for 7z files.
type SevenZip struct {
}

var _ Bundle = SevenZip{}

func (s SevenZip) Entries(src io.Reader, size int64) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		ra, ok := src.(io.ReaderAt)
		if !ok {
			yield(nil, ErrNotReaderAt)
			return
		}

		zr, err := sevenzip.NewReader(ra, size)
		if err != nil {
			yield(nil, fmt.Errorf("open 7z reader error: %w", err))
			return
		}

		for _, zf := range zr.File {
			if !zf.Mode().IsRegular() {
				continue
			}

			if !yield(&sevenZipEntry{zf}, nil) {
				return
			}
		}
	}
}

func (s SevenZip) Ext() string {
	return ".7z"
}

type sevenZipEntry struct {
	*sevenzip.File
}

var _ Entry = &sevenZipEntry{}

func (e *sevenZipEntry) Name() string {
	return e.File.Name
}

func (e *sevenZipEntry) FileInfo() os.FileInfo {
	return e.File.FileInfo()
}
