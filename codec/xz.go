package codec

import (
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Xz implements Codec for xz compression algorithm.
type Xz struct {
}

var _ Codec = Xz{}

func (c Xz) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

func (c Xz) Ext() string {
	return ".xz"
}

// Lzma implements Codec for the legacy LZMA "alone" format.
//
// Older Workshop downloads are served as LZMA-compressed ".bin" files, which is why ".bin" also maps to this codec.
type Lzma struct {
}

var _ Codec = Lzma{}

func (c Lzma) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := lzma.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

func (c Lzma) Ext() string {
	return ".lzma"
}
