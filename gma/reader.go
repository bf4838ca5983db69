package gma

import (
	"io"
	"iter"
)

// DefaultBufferSize is the default value of [Options.BufferSize], which is 32 KiB.
const DefaultBufferSize = 32 * 1024

// Options customises NewReader.
type Options struct {
	// BufferSize is the size of the read buffer placed in front of the source.
	//
	// Default to DefaultBufferSize.
	BufferSize int
}

// Reader decodes an archive from a forward-only stream.
//
// NewReader consumes the header and the entire record table so Header and Records are available immediately. The
// payloads follow in record order and must be consumed with Files.
//
// Reader is not safe for use across multiple goroutines.
type Reader struct {
	// Header is the decoded archive header.
	Header Header
	// Records is the record table in declaration order.
	Records []FileRecord

	c          *cursor
	dataOffset int64
	next       int
	cur        *File
}

// NewReader decodes the header and record table from src.
//
// The returned Reader is positioned at the first payload byte. The src io.Reader does not need to implement
// io.Seeker; skipped fields are discarded by reading through them.
//
// The returned error is always an *Error. Use errors.Is with ErrInvalidFormat to detect inputs that are not archives
// at all, and ErrTruncated for archives that end prematurely.
func NewReader(src io.Reader, optFns ...func(*Options)) (*Reader, error) {
	opts := &Options{
		BufferSize: DefaultBufferSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	r := &Reader{c: newCursor(src, opts.BufferSize)}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	if err := r.readRecords(); err != nil {
		return nil, err
	}

	r.dataOffset = r.c.off
	return r, nil
}

func (r *Reader) readHeader() error {
	magic, err := r.c.uint32()
	if err != nil {
		return r.errorf(StageFormat, "", err)
	}
	if magic != Magic {
		return r.errorf(StageFormat, "", ErrInvalidFormat)
	}

	if err = r.c.skip(headerReservedSize); err != nil {
		return r.errorf(StageHeader, "", err)
	}

	// description and author are decoded in full even though only the name drives extraction.
	for _, s := range []*string{&r.Header.Name, &r.Header.Description, &r.Header.Author} {
		if *s, err = r.c.cstring(); err != nil {
			return r.errorf(StageHeader, "", err)
		}
	}

	if err = r.c.skip(headerTrailerSize); err != nil {
		return r.errorf(StageHeader, "", err)
	}

	return nil
}

func (r *Reader) readRecords() error {
	var offset int64

	for {
		index, err := r.c.uint32()
		if err != nil {
			return r.errorf(StageRecords, "", err)
		}
		if index == 0 {
			return nil
		}

		rec := FileRecord{Index: index, Offset: offset}
		if rec.Name, err = r.c.cstring(); err != nil {
			return r.errorf(StageRecords, "", err)
		}
		if rec.Size, err = r.c.uint32(); err != nil {
			return r.errorf(StageRecords, rec.Name, err)
		}
		if err = r.c.skip(recordReservedSize); err != nil {
			return r.errorf(StageRecords, rec.Name, err)
		}

		r.Records = append(r.Records, rec)
		offset += int64(rec.Size)
	}
}

// TotalSize returns the sum of all declared payload sizes.
func (r *Reader) TotalSize() (n int64) {
	for _, rec := range r.Records {
		n += int64(rec.Size)
	}

	return
}

// Consumed returns the number of payload bytes consumed so far.
//
// Once Files has been iterated to completion without error, Consumed equals TotalSize.
func (r *Reader) Consumed() int64 {
	return r.c.off - r.dataOffset
}

// Files returns an iterator over the archive's files in record order.
//
// Each *File is an io.Reader over exactly [FileRecord.Size] bytes and is only valid until the iterator advances;
// whatever is left unread is discarded before the next file is produced. If the input ends before a payload is
// complete, the error (wrapping ErrTruncated) is returned by [File.Read] or yielded by the iterator, after which the
// iterator stops.
//
// Breaking out of the loop and calling Files again resumes with the record after the last one yielded. Once every
// file has been produced, subsequent iterations produce nothing.
func (r *Reader) Files() iter.Seq2[*File, error] {
	return func(yield func(*File, error) bool) {
		for {
			if f := r.cur; f != nil {
				r.cur = nil
				if err := f.discard(); err != nil {
					r.next = len(r.Records)
					yield(nil, err)
					return
				}
			}

			if r.next >= len(r.Records) {
				return
			}

			r.cur = &File{FileRecord: r.Records[r.next], r: r, remaining: int64(r.Records[r.next].Size)}
			r.next++

			if !yield(r.cur, nil) {
				return
			}
		}
	}
}

func (r *Reader) errorf(stage Stage, name string, err error) *Error {
	return &Error{Stage: stage, Name: name, Offset: r.c.off, Err: err}
}

// File is a single file in the archive, readable as an io.Reader over its payload.
type File struct {
	FileRecord

	r         *Reader
	remaining int64
	err       error
}

// Read implements io.Reader.
//
// Read returns io.EOF once exactly [FileRecord.Size] bytes have been read. Any other error is an *Error with
// StagePayload.
func (f *File) Read(p []byte) (n int, err error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}

	n, err = f.r.c.Read(p)
	f.remaining -= int64(n)

	switch {
	case err == nil:
	case err == io.EOF && f.remaining == 0:
		err = nil
	default:
		f.err = f.r.errorf(StagePayload, f.Name, truncated(err))
		err = f.err
	}

	return
}

// discard consumes whatever remains of the payload.
func (f *File) discard() error {
	if f.err != nil {
		return f.err
	}
	if f.remaining <= 0 {
		return nil
	}

	n, err := f.r.c.br.Discard(int(f.remaining))
	f.r.c.off += int64(n)
	f.remaining -= int64(n)
	if err != nil {
		f.err = f.r.errorf(StagePayload, f.Name, truncated(err))
		return f.err
	}

	return nil
}
