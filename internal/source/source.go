// Package source turns a command-line argument into the addons to decode.
//
// An argument can be a local file, a local directory, an S3 object, or an S3 prefix. Each file or object found is an
// Input, and each Input produces one or more Addon streams: plain and compressed addons produce one, bundles produce
// one per addon entry.
package source

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/gmad/internal"
	"github.com/nguyengg/gmad/internal/config"
	"github.com/nguyengg/gmad/util"
)

// Client abstracts the S3 APIs that are needed to read S3 sources.
type Client interface {
	s3.ListObjectsV2APIClient
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises Open.
type Options struct {
	// NewClient returns the Client to access the given bucket.
	//
	// By default, config.NewS3ClientForBucket is used.
	NewClient func(ctx context.Context, bucket string) (Client, error)

	// ExpectedBucketOwner returns the optional expected bucket owner to be passed to every S3 call.
	//
	// By default, the value from config.ForBucket is used.
	ExpectedBucketOwner func(bucket string) *string
}

// Source is what a command-line argument points to.
type Source struct {
	// Arg is the original argument.
	Arg string

	// Multi is true if the argument is a directory or an S3 prefix.
	//
	// In that case, not every Input is expected to be an addon.
	Multi bool

	inputs iter.Seq2[*Input, error]
}

// Open resolves the argument into a Source.
//
// Local arguments must exist. S3 arguments are only validated for syntax; the first S3 call happens when Inputs is
// iterated.
func Open(ctx context.Context, arg string, optFns ...func(*Options)) (*Source, error) {
	opts := &Options{
		NewClient: func(ctx context.Context, bucket string) (Client, error) {
			return config.NewS3ClientForBucket(ctx, bucket)
		},
		ExpectedBucketOwner: func(bucket string) *string {
			return config.ForBucket(bucket).ExpectedBucketOwner
		},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	if internal.IsS3URI(arg) {
		return openS3(ctx, arg, opts)
	}

	fi, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf(`stat "%s" error: %w`, arg, err)
	}

	if !fi.IsDir() {
		return &Source{
			Arg: arg,
			inputs: func(yield func(*Input, error) bool) {
				yield(localInput(arg, fi.Size()), nil)
			},
		}, nil
	}

	return &Source{
		Arg:   arg,
		Multi: true,
		inputs: func(yield func(*Input, error) bool) {
			for path, err := range util.RegularFiles(ctx, arg) {
				if err != nil {
					yield(nil, fmt.Errorf(`walk "%s" error: %w`, arg, err))
					return
				}

				// the size is only needed for bundles so don't bother with a stat here.
				if !yield(localInput(path, -1), nil) {
					return
				}
			}
		},
	}, nil
}

// Inputs returns an iterator over the files or S3 objects of this Source.
//
// The iterator is lazy so that very large directories or prefixes do not need to be listed upfront.
func (s *Source) Inputs() iter.Seq2[*Input, error] {
	return s.inputs
}

// Input is a single local file or S3 object.
type Input struct {
	// Name is the local path or the S3 URI.
	Name string

	// Size is the size of the file or object, -1 if not yet known.
	Size int64

	open         func(ctx context.Context) (io.ReadCloser, error)
	openReaderAt func(ctx context.Context) (ReaderAtCloser, int64, error)
}

// ReaderAtCloser is the seekable view of an Input needed by bundles whose index sits at the end of the file.
type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// Open opens the Input for sequential reading.
func (in *Input) Open(ctx context.Context) (io.ReadCloser, error) {
	return in.open(ctx)
}

// OpenReaderAt opens the Input for random access, also returning its size.
func (in *Input) OpenReaderAt(ctx context.Context) (ReaderAtCloser, int64, error) {
	return in.openReaderAt(ctx)
}

func localInput(name string, size int64) *Input {
	return &Input{
		Name: name,
		Size: size,
		open: func(_ context.Context) (io.ReadCloser, error) {
			return os.Open(name)
		},
		openReaderAt: func(_ context.Context) (ReaderAtCloser, int64, error) {
			f, err := os.Open(name)
			if err != nil {
				return nil, 0, err
			}

			fi, err := f.Stat()
			if err != nil {
				_ = f.Close()
				return nil, 0, fmt.Errorf(`stat file "%s" error: %w`, name, err)
			}

			return f, fi.Size(), nil
		},
	}
}
