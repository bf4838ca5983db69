package internal

import (
	"fmt"
	"strings"
)

// IsS3URI returns true if text starts with s3://.
func IsS3URI(text string) bool {
	return strings.HasPrefix(text, "s3://")
}

// ParseS3URI parses S3 URIs in format s3://bucket/key.
//
// The key may be empty ("s3://bucket" or "s3://bucket/") in which case the entire bucket is meant. A key ending with
// "/" is a prefix.
func ParseS3URI(text string) (bucket, key string, err error) {
	// parse S3 URI with optional key prefix. don't bother validating valid bucket names.
	if !IsS3URI(text) {
		return "", "", fmt.Errorf("text does not start with s3://")
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(text, "s3://"), "/")
	if bucket == "" {
		return "", "", fmt.Errorf(`no bucket in "%s"`, text)
	}

	return
}
