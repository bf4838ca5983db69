package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/gmad/internal"
	"github.com/nguyengg/gmad/s3readseeker"
)

func openS3(ctx context.Context, arg string, opts *Options) (*Source, error) {
	bucket, key, err := internal.ParseS3URI(arg)
	if err != nil {
		return nil, err
	}

	owner := opts.ExpectedBucketOwner(bucket)

	if key != "" && !strings.HasSuffix(key, "/") {
		return &Source{
			Arg: arg,
			inputs: func(yield func(*Input, error) bool) {
				client, err := opts.NewClient(ctx, bucket)
				if err != nil {
					yield(nil, fmt.Errorf("create S3 client error: %w", err))
					return
				}

				yield(s3Input(client, bucket, key, owner, -1), nil)
			},
		}, nil
	}

	var prefix *string
	if key != "" {
		prefix = aws.String(key)
	}

	return &Source{
		Arg:   arg,
		Multi: true,
		inputs: func(yield func(*Input, error) bool) {
			client, err := opts.NewClient(ctx, bucket)
			if err != nil {
				yield(nil, fmt.Errorf("create S3 client error: %w", err))
				return
			}

			for paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
				Bucket:              aws.String(bucket),
				Prefix:              prefix,
				ExpectedBucketOwner: owner,
			}); paginator.HasMorePages(); {
				page, err := paginator.NextPage(ctx)
				if err != nil {
					yield(nil, fmt.Errorf("list objects error: %w", err))
					return
				}

				for _, obj := range page.Contents {
					// "folders" created from the console are zero-byte objects ending with "/".
					if k := aws.ToString(obj.Key); !strings.HasSuffix(k, "/") {
						if !yield(s3Input(client, bucket, k, owner, aws.ToInt64(obj.Size)), nil) {
							return
						}
					}
				}
			}
		},
	}, nil
}

func s3Input(client Client, bucket, key string, owner *string, size int64) *Input {
	return &Input{
		Name: fmt.Sprintf("s3://%s/%s", bucket, key),
		Size: size,
		open: func(ctx context.Context) (io.ReadCloser, error) {
			getObjectOutput, err := client.GetObject(ctx, &s3.GetObjectInput{
				Bucket:              aws.String(bucket),
				Key:                 aws.String(key),
				ExpectedBucketOwner: owner,
			})
			if err != nil {
				return nil, fmt.Errorf(`get object "s3://%s/%s" error: %w`, bucket, key, err)
			}

			return getObjectOutput.Body, nil
		},
		openReaderAt: func(ctx context.Context) (ReaderAtCloser, int64, error) {
			r, err := s3readseeker.New(ctx, client, bucket, key, func(opts *s3readseeker.Options) {
				opts.Size = max(size, 0)
				opts.ModifyGetObjectInput = func(input *s3.GetObjectInput) *s3.GetObjectInput {
					input.ExpectedBucketOwner = owner
					return input
				}
				opts.ModifyHeadObjectInput = func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
					input.ExpectedBucketOwner = owner
					return input
				}
			})
			if err != nil {
				return nil, 0, fmt.Errorf(`open object "s3://%s/%s" error: %w`, bucket, key, err)
			}

			return nopCloser{r}, r.Size(), nil
		},
	}
}

type nopCloser struct {
	s3readseeker.ReadSeeker
}

func (nopCloser) Close() error {
	return nil
}
