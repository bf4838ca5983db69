package bundle

import (
	"archive/tar"
	"fmt"
	"io"
	"iter"

	"github.com/nguyengg/gmad/codec"
)

// Tar implements Bundle for tar archives.
type Tar struct {
	// Codec if given will be used to decode contents before they are read as tar.
	codec.Codec
}

var _ Bundle = Tar{}

func (t Tar) Entries(src io.Reader, _ int64) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		dec := io.NopCloser(src)
		if t.Codec != nil {
			var err error
			if dec, err = t.Codec.NewDecoder(src); err != nil {
				yield(nil, fmt.Errorf("open %s decoder error: %w", t.Codec.Ext(), err))
				return
			}
		}
		defer dec.Close()

		tr := tar.NewReader(dec)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read next tar entry error: %w", err))
				return
			}

			if hdr.Typeflag != tar.TypeReg {
				continue
			}

			if !yield(&tarEntry{Reader: tr, Header: hdr}, nil) {
				return
			}
		}
	}
}

func (t Tar) Ext() string {
	if t.Codec != nil {
		return ".tar" + t.Codec.Ext()
	}

	return ".tar"
}

type tarEntry struct {
	*tar.Reader
	*tar.Header
}

var _ Entry = &tarEntry{}

func (e *tarEntry) Name() string {
	return e.Header.Name
}

func (e *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(e.Reader), nil
}
