package s3readseeker

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient implements ReadSeekerClient by slicing into its in-memory data.
//
// calls keeps track of GetObject input parameters for asserting.
type testClient struct {
	data  []byte
	calls []s3.GetObjectInput
	heads int
}

func randomTestClient(n int) *testClient {
	data := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		panic(err)
	}

	return &testClient{data: data}
}

func (c *testClient) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.calls = append(c.calls, *input)

	rangeBytes := aws.ToString(input.Range)
	values := strings.SplitN(strings.TrimPrefix(rangeBytes, "bytes="), "-", 2)
	if len(values) != 2 {
		return nil, fmt.Errorf("invalid range: %s", rangeBytes)
	}

	i, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start byte in range `%s`: %w", rangeBytes, err)
	}
	j, err := strconv.ParseInt(values[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end byte in range `%s`: %w", rangeBytes, err)
	}
	if i > j || j >= int64(len(c.data)) {
		return nil, fmt.Errorf("unsatisfiable range: %s", rangeBytes)
	}

	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(c.data[i : j+1])),
	}, nil
}

func (c *testClient) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	c.heads++
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(c.data))),
	}, nil
}

func TestReadSeeker_Read(t *testing.T) {
	tc := randomTestClient(1024)
	r, err := New(context.Background(), tc, "bucket", "key", func(opts *Options) {
		opts.BufferSize = 200
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), r.Size())
	assert.Equal(t, 1, tc.heads)

	// two reads of 100 bytes are served by a single GetObject of 200 bytes.
	buf := make([]byte, 100)
	assertReadFull(t, r, buf, tc.data[:100])
	assertReadFull(t, r, buf, tc.data[100:200])
	if assert.Len(t, tc.calls, 1) {
		assert.Equal(t, "bytes=0-199", aws.ToString(tc.calls[0].Range))
	}

	// a read larger than the buffer fetches exactly what is asked.
	tc.calls = nil
	big := make([]byte, 500)
	assertReadFull(t, r, big, tc.data[200:700])
	assert.Len(t, tc.calls, 1)

	// remaining bytes then EOF.
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, tc.data[700:], rest)

	n, err := r.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestReadSeeker_Seek(t *testing.T) {
	tc := randomTestClient(1024)
	r, err := New(context.Background(), tc, "bucket", "key", func(opts *Options) {
		opts.BufferSize = 100
		opts.Size = 1024
	})
	require.NoError(t, err)
	assert.Equal(t, 0, tc.heads)

	buf := make([]byte, 10)
	assertReadFull(t, r, buf, tc.data[:10])

	// seeking forward inside the buffer does not make any call.
	tc.calls = nil
	off, err := r.Seek(20, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(30), off)
	assertReadFull(t, r, buf, tc.data[30:40])
	assert.Empty(t, tc.calls)

	off, err = r.Seek(-24, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), off)
	assertReadFull(t, r, buf, tc.data[1000:1010])

	off, err = r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), off)
	_, err = r.Read(buf)
	assert.Equal(t, io.EOF, err)

	_, err = r.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, ErrSeekBeforeFirstByte)

	off, err = r.Seek(5, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), off)
	assertReadFull(t, r, buf, tc.data[5:15])
}

func TestReadSeeker_ReadAt(t *testing.T) {
	tc := randomTestClient(1024)
	r, err := New(context.Background(), tc, "bucket", "key")
	require.NoError(t, err)

	buf := make([]byte, 100)
	n, err := r.ReadAt(buf, 42)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, tc.data[42:142], buf)

	// ReadAt does not move the offset used by Read.
	assertReadFull(t, r, buf[:10], tc.data[:10])

	// reading past EOF is clamped.
	n, err = r.ReadAt(buf, 1020)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, tc.data[1020:], buf[:4])

	n, err = r.ReadAt(buf, 1024)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}

func assertReadFull(t *testing.T, r io.Reader, buf, expected []byte) {
	t.Helper()

	n, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, len(expected), n)
	assert.Equal(t, expected, buf)
}
