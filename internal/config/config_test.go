package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[extract]
passphrase = 12345678
encoding = gb18030
strip-components = 1
recursive = true
include = **/*.go, **/*.md
size-limit = 256 MiB
overwrite = yes

[s3://my-bucket]
aws-profile = archive
expected-bucket-owner = 123456789012
`

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, Name), []byte(sample), 0644))

	dir := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(dir, 0755))
	t.Chdir(dir)

	l := &Loader{}
	name, err := l.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, Name), name)

	c, err := l.ForExtract()
	require.NoError(t, err)
	assert.Equal(t, ExtractConfig{
		Passphrase:      "12345678",
		Encoding:        "gb18030",
		StripComponents: 1,
		Recursive:       true,
		Include:         []string{"**/*.go", "**/*.md"},
		SizeLimit:       256 << 20,
		Overwrite:       true,
	}, c)

	b := l.ForBucket("my-bucket")
	assert.Equal(t, "archive", b.AWSProfile)
	require.NotNil(t, b.ExpectedBucketOwner)
	assert.Equal(t, "123456789012", *b.ExpectedBucketOwner)

	assert.Equal(t, BucketConfig{}, l.ForBucket("other-bucket"))

	assert.Equal(t, "archive", l.AWSProfile("my-bucket"))
	assert.Equal(t, "", l.AWSProfile("other-bucket"))
	l.Profile = "override"
	assert.Equal(t, "override", l.AWSProfile("my-bucket"))
}

func TestLoader_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	l := &Loader{}
	name, err := l.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, name)

	c, err := l.ForExtract()
	require.NoError(t, err)
	assert.Equal(t, ExtractConfig{}, c)
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "strip-components", content: "[extract]\nstrip-components = many\n"},
		{name: "recursive", content: "[extract]\nrecursive = maybe\n"},
		{name: "size-limit", content: "[extract]\nsize-limit = lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, Name), []byte(tt.content), 0644))
			t.Chdir(dir)

			l := &Loader{}
			_, err := l.Load(t.Context())
			require.NoError(t, err)

			_, err = l.ForExtract()
			assert.Error(t, err)
		})
	}
}
