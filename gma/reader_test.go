package gma

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/nguyengg/gmad/internal/gmatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagic(t *testing.T) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, Magic)
	assert.Equal(t, "GMAD", string(b))
}

func TestNewReader(t *testing.T) {
	data := gmatest.Archive{
		Name:        "my addon",
		Description: "a description",
		Author:      "someone",
		Files: []gmatest.File{
			{Name: "a.txt", Data: []byte("AAAAA")},
			{Name: "sub/b.txt", Data: []byte("BBB")},
			{Name: "empty.txt", Data: nil},
		},
	}.Bytes()

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, Header{Name: "my addon", Description: "a description", Author: "someone"}, r.Header)
	assert.Equal(t, []FileRecord{
		{Index: 1, Name: "a.txt", Size: 5, Offset: 0},
		{Index: 2, Name: "sub/b.txt", Size: 3, Offset: 5},
		{Index: 3, Name: "empty.txt", Size: 0, Offset: 8},
	}, r.Records)
	assert.Equal(t, int64(8), r.TotalSize())
	assert.Equal(t, int64(0), r.Consumed())

	// the cursor must sit exactly at the first payload.
	assert.Equal(t, int64(len(data)-8), r.c.off)
}

func TestNewReader_InvalidFormat(t *testing.T) {
	data := gmatest.New("addon", gmatest.File{Name: "a.txt", Data: []byte("A")}).Bytes()
	copy(data, "PK\x03\x04")

	r, err := NewReader(bytes.NewReader(data))
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	var ge *Error
	if assert.ErrorAs(t, err, &ge) {
		assert.Equal(t, StageFormat, ge.Stage)
		assert.Equal(t, int64(4), ge.Offset)
	}
}

func TestNewReader_Truncated(t *testing.T) {
	data := gmatest.New("addon",
		gmatest.File{Name: "a.txt", Data: []byte("AAAAA")},
		gmatest.File{Name: "sub/b.txt", Data: []byte("BBB")},
	).Bytes()
	// payloads are 8 bytes, the sentinel 4 bytes before that.
	tableEnd := len(data) - 8

	tests := []struct {
		name      string
		size      int
		wantStage Stage
	}{
		{name: "empty input", size: 0, wantStage: StageFormat},
		{name: "partial signature", size: 3, wantStage: StageFormat},
		{name: "inside reserved header", size: 10, wantStage: StageHeader},
		{name: "inside addon name", size: 4 + 18 + 2, wantStage: StageHeader},
		{name: "before first record", size: 4 + 18 + len("addon\x00description\x00author\x00") + 2, wantStage: StageHeader},
		{name: "inside record table", size: tableEnd - 10, wantStage: StageRecords},
		{name: "missing sentinel", size: tableEnd - 2, wantStage: StageRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(data[:tt.size]))
			assert.ErrorIs(t, err, ErrTruncated)

			var ge *Error
			if assert.ErrorAs(t, err, &ge) {
				assert.Equal(t, tt.wantStage, ge.Stage)
				assert.Equal(t, int64(tt.size), ge.Offset)
			}
		})
	}
}

func TestNewReader_LossyText(t *testing.T) {
	data := gmatest.New("bad \xff name", gmatest.File{Name: "caf\xe9.txt", Data: []byte("x")}).Bytes()

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "bad \uFFFD name", r.Header.Name)
	assert.Equal(t, "caf\uFFFD.txt", r.Records[0].Name)
}

func TestNewReader_SmallBuffer(t *testing.T) {
	// names longer than the buffer must still decode.
	long := string(bytes.Repeat([]byte("n"), 100))
	data := gmatest.New(long, gmatest.File{Name: long + ".txt", Data: []byte("x")}).Bytes()

	r, err := NewReader(bytes.NewReader(data), func(opts *Options) {
		opts.BufferSize = 16
	})
	require.NoError(t, err)
	assert.Equal(t, long, r.Header.Name)
	assert.Equal(t, long+".txt", r.Records[0].Name)
}

func TestReader_Files(t *testing.T) {
	data := gmatest.New("addon",
		gmatest.File{Name: "a.txt", Data: []byte("AAAAA")},
		gmatest.File{Name: "b.txt", Data: []byte("BBB")},
		gmatest.File{Name: "c.txt", Data: []byte("CC")},
	).Bytes()
	// trailing bytes past the last payload must never be consumed.
	data = append(data, "trailing garbage"...)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	got := make(map[string]string)
	for f, err := range r.Files() {
		require.NoError(t, err)

		if f.Name == "b.txt" {
			// read only part of the payload; the rest must be skipped.
			buf := make([]byte, 1)
			_, err = io.ReadFull(f, buf)
			require.NoError(t, err)
			got[f.Name] = string(buf)
			continue
		}

		b, err := io.ReadAll(f)
		require.NoError(t, err)
		got[f.Name] = string(b)
	}

	assert.Equal(t, map[string]string{"a.txt": "AAAAA", "b.txt": "B", "c.txt": "CC"}, got)
	assert.Equal(t, r.TotalSize(), r.Consumed())

	// second iteration produces nothing.
	for range r.Files() {
		t.Fatal("Files() should only be iterable once")
	}
}

func TestReader_Files_Resume(t *testing.T) {
	data := gmatest.New("addon",
		gmatest.File{Name: "a.txt", Data: []byte("AAAAA")},
		gmatest.File{Name: "b.txt", Data: []byte("BBB")},
	).Bytes()

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	// stop right after a.txt is produced without reading any of it.
	for range r.Files() {
		break
	}

	got := make(map[string]string)
	for f, err := range r.Files() {
		require.NoError(t, err)

		b, err := io.ReadAll(f)
		require.NoError(t, err)
		got[f.Name] = string(b)
	}

	assert.Equal(t, map[string]string{"b.txt": "BBB"}, got)
	assert.Equal(t, r.TotalSize(), r.Consumed())

	for range r.Files() {
		t.Fatal("Files() should produce nothing once every file has been produced")
	}
}

func TestReader_Files_Truncated(t *testing.T) {
	data := gmatest.New("addon",
		gmatest.File{Name: "a.txt", Data: []byte("AAAAA")},
		gmatest.File{Name: "b.txt", Data: []byte("BBBBBBBBBB")},
	).Bytes()
	data = data[:len(data)-7]

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	var (
		names   []string
		iterErr error
	)
	for f, err := range r.Files() {
		if err != nil {
			iterErr = err
			break
		}
		names = append(names, f.Name)

		b, err := io.ReadAll(f)
		if f.Name == "a.txt" {
			assert.NoError(t, err)
			assert.Equal(t, "AAAAA", string(b))
			continue
		}

		assert.Equal(t, "BBB", string(b))
		assert.ErrorIs(t, err, ErrTruncated)

		var ge *Error
		if assert.ErrorAs(t, err, &ge) {
			assert.Equal(t, StagePayload, ge.Stage)
			assert.Equal(t, "b.txt", ge.Name)
		}
	}

	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	// the iterator reports the same error once the consumer moves on.
	assert.ErrorIs(t, iterErr, ErrTruncated)
}

func TestReader_Files_TruncatedUnread(t *testing.T) {
	data := gmatest.New("addon",
		gmatest.File{Name: "a.txt", Data: []byte("AAAAA")},
		gmatest.File{Name: "b.txt", Data: []byte("BBB")},
	).Bytes()
	data = data[:len(data)-5]

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	// skipping a.txt without reading it must still detect that the payload is incomplete.
	var errs []error
	for _, err := range r.Files() {
		errs = append(errs, err)
	}

	if assert.Len(t, errs, 2) {
		assert.NoError(t, errs[0])
		assert.True(t, errors.Is(errs[1], ErrTruncated), "second element should be ErrTruncated; got %v", errs[1])
	}
}
