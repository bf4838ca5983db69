package bundle

import (
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/nwaples/rardecode"
)

// Rar implements Bundle for RAR files.
type Rar struct {
}

var _ Bundle = Rar{}

func (r Rar) Entries(src io.Reader, _ int64) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rr, err := rardecode.NewReader(src, "")
		if err != nil {
			yield(nil, fmt.Errorf("open rar reader error: %w", err))
			return
		}

		for {
			fh, err := rr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read next rar entry error: %w", err))
				return
			}

			if fh.IsDir || !fh.Mode().IsRegular() {
				continue
			}

			if !yield(&rarEntry{rarFileInfo: rarFileInfo{fh}, Reader: rr}, nil) {
				return
			}
		}
	}
}

func (r Rar) Ext() string {
	return ".rar"
}

type rarEntry struct {
	rarFileInfo
	io.Reader
}

var _ Entry = &rarEntry{}

func (e *rarEntry) FileInfo() os.FileInfo {
	return &e.rarFileInfo
}

func (e *rarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(e.Reader), nil
}

type rarFileInfo struct {
	*rardecode.FileHeader
}

var _ os.FileInfo = &rarFileInfo{}

func (fi *rarFileInfo) Name() string {
	return fi.FileHeader.Name
}

func (fi *rarFileInfo) Size() int64 {
	return fi.FileHeader.UnPackedSize
}

func (fi *rarFileInfo) ModTime() time.Time {
	return fi.FileHeader.ModificationTime
}

func (fi *rarFileInfo) IsDir() bool {
	return fi.FileHeader.IsDir
}

func (fi *rarFileInfo) Sys() any {
	return nil
}
