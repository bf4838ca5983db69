package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyengg/gmad/gma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`
[extract]
paths = sanitize
fsync = true

[s3]
profile = default-profile

[s3://my-bucket]
aws-profile = bucket-profile
expected-bucket-owner = 123456789012
`), 0644))

	// start from a nested directory to exercise the upward search.
	dir := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(dir, 0755))

	l := &Loader{Dir: dir}
	name, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), name)

	c, err := l.ForExtract()
	require.NoError(t, err)
	assert.Equal(t, ExtractConfig{PathPolicy: gma.SanitizeUnsafePaths, Fsync: true}, c)

	b := l.ForBucket("my-bucket")
	assert.Equal(t, "bucket-profile", b.AWSProfile)
	if assert.NotNil(t, b.ExpectedBucketOwner) {
		assert.Equal(t, "123456789012", *b.ExpectedBucketOwner)
	}

	b = l.ForBucket("other-bucket")
	assert.Equal(t, BucketConfig{Bucket: "other-bucket", AWSProfile: "default-profile"}, b)
}

func TestLoader_Load_NotFound(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}

	// a directory named like the config file must be ignored.
	require.NoError(t, os.Mkdir(filepath.Join(l.Dir, FileName), 0755))

	name, err := l.Load(context.Background())
	require.NoError(t, err)

	// a .gmad file further up the real filesystem is unlikely but possible, so only check defaults if none was found.
	if name == "" {
		c, err := l.ForExtract()
		require.NoError(t, err)
		assert.Equal(t, ExtractConfig{}, c)
		assert.Equal(t, BucketConfig{Bucket: "b"}, l.ForBucket("b"))
	}
}

func TestLoader_ForExtract_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "paths", content: "[extract]\npaths = yolo\n"},
		{name: "fsync", content: "[extract]\nfsync = maybe\n"},
		{name: "fail-fast", content: "[extract]\nfail-fast = sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644))

			l := &Loader{Dir: dir}
			_, err := l.Load(context.Background())
			require.NoError(t, err)

			_, err = l.ForExtract()
			assert.ErrorContains(t, err, tt.name)
		})
	}
}
