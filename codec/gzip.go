package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip implements Codec for gzip compression algorithm.
type Gzip struct {
}

var _ Codec = Gzip{}

func (c Gzip) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}

func (c Gzip) Ext() string {
	return ".gz"
}
