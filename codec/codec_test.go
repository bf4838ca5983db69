package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nguyengg/gmad/internal/gmatest"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

func TestForExt(t *testing.T) {
	tests := []struct {
		ext    string
		want   Codec
		wantOk bool
	}{
		{ext: ".gz", want: Gzip{}, wantOk: true},
		{ext: ".gma.gz", want: Gzip{}, wantOk: true},
		{ext: ".XZ", want: Xz{}, wantOk: true},
		{ext: ".lzma", want: Lzma{}, wantOk: true},
		{ext: ".bin", want: Lzma{}, wantOk: true},
		{ext: ".gma.zst", want: Zstd{}, wantOk: true},
		{ext: ".lz4", want: Lz4{}, wantOk: true},
		{ext: ".gma"},
		{ext: ""},
		{ext: ".zip"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := ForExt(tt.ext)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodec_NewDecoder(t *testing.T) {
	data := gmatest.New("addon", gmatest.File{Name: "a.txt", Data: bytes.Repeat([]byte("hello, world "), 100)}).Bytes()

	tests := []struct {
		codec Codec
		enc   func(w io.Writer) (io.WriteCloser, error)
	}{
		{
			codec: Gzip{},
			enc: func(w io.Writer) (io.WriteCloser, error) {
				return gzip.NewWriter(w), nil
			},
		},
		{
			codec: Xz{},
			enc: func(w io.Writer) (io.WriteCloser, error) {
				return xz.NewWriter(w)
			},
		},
		{
			codec: Lzma{},
			enc: func(w io.Writer) (io.WriteCloser, error) {
				return lzma.NewWriter(w)
			},
		},
		{
			codec: Zstd{},
			enc: func(w io.Writer) (io.WriteCloser, error) {
				return zstd.NewWriter(w)
			},
		},
		{
			codec: Lz4{},
			enc: func(w io.Writer) (io.WriteCloser, error) {
				return lz4.NewWriter(w), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.codec.Ext(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := tt.enc(&buf)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := tt.codec.NewDecoder(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.NoError(t, r.Close())
			assert.Equal(t, data, got)
		})
	}
}

func TestCodec_NewDecoder_InvalidInput(t *testing.T) {
	for _, c := range []Codec{Gzip{}, Xz{}, Zstd{}, Lz4{}} {
		t.Run(c.Ext(), func(t *testing.T) {
			r, err := c.NewDecoder(bytes.NewReader([]byte("GMAD definitely not compressed")))
			if err == nil {
				// some decoders only validate the stream on first read.
				_, err = io.ReadAll(r)
				_ = r.Close()
			}
			assert.Error(t, err)
		})
	}
}
