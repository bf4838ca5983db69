package bundle

import (
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/klauspost/compress/zip"
)

// Zip implements Bundle for ZIP files.
type Zip struct {
}

var _ Bundle = Zip{}

func (z Zip) Entries(src io.Reader, size int64) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		ra, ok := src.(io.ReaderAt)
		if !ok {
			yield(nil, ErrNotReaderAt)
			return
		}

		zr, err := zip.NewReader(ra, size)
		if err != nil {
			yield(nil, fmt.Errorf("open zip reader error: %w", err))
			return
		}

		for _, zf := range zr.File {
			if !zf.Mode().IsRegular() {
				continue
			}

			if !yield(&zipEntry{zf}, nil) {
				return
			}
		}
	}
}

func (z Zip) Ext() string {
	return ".zip"
}

type zipEntry struct {
	*zip.File
}

var _ Entry = &zipEntry{}

func (e *zipEntry) Name() string {
	return e.File.Name
}

func (e *zipEntry) FileInfo() os.FileInfo {
	return e.File.FileInfo()
}
