package config

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/nguyengg/gmad/gma"
)

// ExtractConfig contains extract configurations from the [extract] section.
type ExtractConfig struct {
	PathPolicy gma.PathPolicy
	Fsync      bool
	FailFast   bool
}

// ForExtract returns configuration for extract.
//
// Keys that are absent keep their zero values. An error is returned only if a key is present but invalid.
func (l *Loader) ForExtract() (c ExtractConfig, err error) {
	sec, err := l.cfg.GetSection("extract")
	if err != nil {
		return c, nil
	}

	if k, err := sec.GetKey("paths"); err == nil {
		if c.PathPolicy, err = gma.ParsePathPolicy(k.Value()); err != nil {
			return c, fmt.Errorf("invalid [extract] paths: %w", err)
		}
	}
	if k, err := sec.GetKey("fsync"); err == nil {
		if c.Fsync, err = k.Bool(); err != nil {
			return c, fmt.Errorf("invalid [extract] fsync: %w", err)
		}
	}
	if k, err := sec.GetKey("fail-fast"); err == nil {
		if c.FailFast, err = k.Bool(); err != nil {
			return c, fmt.Errorf("invalid [extract] fail-fast: %w", err)
		}
	}

	return c, nil
}

// ForExtract calls Loader.ForExtract on the DefaultLoader instance.
func ForExtract() (ExtractConfig, error) {
	return DefaultLoader.ForExtract()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket from the [s3://bucket] section.
//
// If the bucket has no AWS profile of its own, the profile from the [s3] section is used.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	if sec, err := l.cfg.GetSection("s3"); err == nil {
		c.AWSProfile = sec.Key("profile").Value()
	}

	sec, err := l.cfg.GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	if v := sec.Key("aws-profile").Value(); v != "" {
		c.AWSProfile = v
	}
	if k, err := sec.GetKey("expected-bucket-owner"); err == nil {
		c.ExpectedBucketOwner = aws.String(k.Value())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) (c BucketConfig) {
	return DefaultLoader.ForBucket(bucket)
}
