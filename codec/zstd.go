package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd implements Codec for zstd compression algorithm.
type Zstd struct{}

var _ Codec = Zstd{}

func (c Zstd) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}

	return &zstdDecoder{dec}, nil
}

type zstdDecoder struct {
	*zstd.Decoder
}

func (d *zstdDecoder) Close() error {
	d.Decoder.Close()
	return nil
}

func (c Zstd) Ext() string {
	return ".zst"
}
