// Package s3readseeker implements io.ReadSeeker and io.ReaderAt over an S3 object using ranged GetObject.
//
// Containers such as ZIP and 7z keep their index at the end of the file so they cannot be streamed from a single
// GetObject body. ReadSeeker lets them be opened directly from S3 without first downloading the whole object.
package s3readseeker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReadSeeker uses ranged GetObject to implement io.ReadSeeker and io.ReaderAt.
type ReadSeeker interface {
	io.ReadSeeker
	io.ReaderAt

	// Size returns the size of the S3 object.
	Size() int64
}

// ReadSeekerClient abstracts the S3 APIs that are needed to implement ReadSeeker.
type ReadSeekerClient interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// DefaultBufferSize is the default value for Options.BufferSize.
const DefaultBufferSize = 64 * 1024

// Options customises New.
type Options struct {
	// BufferSize is used to provide buffered read-ahead for every Read call.
	//
	// By default, DefaultBufferSize is used so that consequential small Reads don't end up with several GetObject
	// calls if one bigger GetObject call is more efficient. ReadAt is never buffered.
	BufferSize int

	// Size is the size of the object if already known, such as from ListObjectsV2.
	//
	// If positive, New will not call HeadObject.
	Size int64

	// ModifyGetObjectInput can be used to modify the GetObject input parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the GetObject call.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput

	// ModifyHeadObjectInput can be used to modify the HeadObject input parameters such as adding
	// ExpectedBucketOwner.
	//
	// Its return value will be used to make the HeadObject call. Used only by New.
	ModifyHeadObjectInput func(input *s3.HeadObjectInput) *s3.HeadObjectInput
}

// New returns a ReadSeeker with the given bucket and key.
//
// The ctx is used for every GetObject and HeadObject call made by the returned ReadSeeker.
func New(ctx context.Context, client ReadSeekerClient, bucket, key string, optFns ...func(*Options)) (ReadSeeker, error) {
	opts := &Options{
		BufferSize: DefaultBufferSize,
		ModifyGetObjectInput: func(input *s3.GetObjectInput) *s3.GetObjectInput {
			return input
		},
		ModifyHeadObjectInput: func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
			return input
		},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	size := opts.Size
	if size <= 0 {
		headObjectOutput, err := client.HeadObject(ctx, opts.ModifyHeadObjectInput(&s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}))
		if err != nil {
			return nil, fmt.Errorf("determine file size error: %w", err)
		}

		size = aws.ToInt64(headObjectOutput.ContentLength)
	}

	return &readSeeker{
		ctx:        ctx,
		client:     client,
		bucket:     bucket,
		key:        key,
		goiFn:      opts.ModifyGetObjectInput,
		size:       size,
		bufferSize: max(opts.BufferSize, 1),
	}, nil
}

// readSeeker keeps in buf the bytes of the object starting at off.
type readSeeker struct {
	ctx         context.Context
	client      ReadSeekerClient
	bucket, key string
	goiFn       func(*s3.GetObjectInput) *s3.GetObjectInput
	off, size   int64
	buf         bytes.Buffer
	bufferSize  int
}

func (r *readSeeker) Size() int64 {
	return r.size
}

// get returns the body of the inclusive byte range [start, end].
func (r *readSeeker) get(start, end int64) (io.ReadCloser, error) {
	getObjectOutput, err := r.client.GetObject(r.ctx, r.goiFn(&s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	}))
	if err != nil {
		return nil, err
	}

	return getObjectOutput.Body, nil
}

func (r *readSeeker) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.off >= r.size {
		return 0, io.EOF
	}

	if r.buf.Len() == 0 {
		end := min(r.size, r.off+int64(max(len(p), r.bufferSize)))
		body, err := r.get(r.off, end-1)
		if err != nil {
			return 0, err
		}

		_, err = r.buf.ReadFrom(io.LimitReader(body, end-r.off))
		if _ = body.Close(); err != nil {
			r.buf.Reset()
			return 0, err
		}
		if r.buf.Len() == 0 {
			return 0, io.ErrUnexpectedEOF
		}
	}

	n, _ = r.buf.Read(p)
	r.off += int64(n)
	return n, nil
}

func (r *readSeeker) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrSeekBeforeFirstByte
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= r.size {
		return 0, io.EOF
	}

	end := min(r.size, off+int64(len(p)))
	body, err := r.get(off, end-1)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	if n, err = io.ReadFull(body, p[:end-off]); err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// ErrSeekBeforeFirstByte is returned if a seek or ReadAt would end up at a negative offset.
var ErrSeekBeforeFirstByte = errors.New("seek ends up before first byte")

// Seek implements io.Seeker.
//
// Seeking past the end of the object is allowed; subsequent Read calls will return io.EOF.
func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var off int64
	switch whence {
	case io.SeekStart:
		off = offset
	case io.SeekCurrent:
		off = r.off + offset
	case io.SeekEnd:
		off = r.size + offset
	default:
		return r.off, fmt.Errorf("invalid whence %d", whence)
	}

	if off < 0 {
		return r.off, ErrSeekBeforeFirstByte
	}

	// keep the read-ahead buffer if the new offset is still inside it.
	if d := off - r.off; d >= 0 && d < int64(r.buf.Len()) {
		r.buf.Next(int(d))
	} else {
		r.buf.Reset()
	}

	r.off = off
	return r.off, nil
}
