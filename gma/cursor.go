package gma

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/encoding/unicode"
)

// cursor is a forward-only reader that keeps track of the number of bytes consumed.
//
// All reads go through the same bufio.Reader so the logical position is exact even though the underlying io.Reader
// may have been read further ahead.
type cursor struct {
	br  *bufio.Reader
	off int64
	buf [4]byte
}

func newCursor(src io.Reader, size int) *cursor {
	return &cursor{br: bufio.NewReaderSize(src, size)}
}

func (c *cursor) Read(p []byte) (n int, err error) {
	n, err = c.br.Read(p)
	c.off += int64(n)
	return
}

// uint32 reads a little-endian 32-bit unsigned integer.
func (c *cursor) uint32() (uint32, error) {
	n, err := io.ReadFull(c.br, c.buf[:])
	c.off += int64(n)
	if err != nil {
		return 0, truncated(err)
	}

	return binary.LittleEndian.Uint32(c.buf[:]), nil
}

// skip discards exactly n bytes.
func (c *cursor) skip(n int) error {
	m, err := c.br.Discard(n)
	c.off += int64(m)
	if err != nil {
		return truncated(err)
	}

	return nil
}

// cstring reads bytes up to and including the next zero byte and decodes everything before it as text.
func (c *cursor) cstring() (string, error) {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	for {
		b, err := c.br.ReadByte()
		if err != nil {
			return "", truncated(err)
		}

		c.off++
		if b == 0 {
			return decodeText(bb.B), nil
		}

		_ = bb.WriteByte(b)
	}
}

// decodeText converts the given bytes to a string, replacing invalid UTF-8 sequences with U+FFFD.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	if d, err := unicode.UTF8.NewDecoder().Bytes(b); err == nil {
		return string(d)
	}

	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// truncated maps EOF conditions to ErrTruncated and leaves other errors untouched.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}

	return err
}
