// Package source loads the content of an archive into memory from a local file or an S3 object.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/unarchive/internal"
	"github.com/nguyengg/unarchive/internal/config"
	"github.com/schollz/progressbar/v3"
)

// Options customises Load.
type Options struct {
	// Loader provides the S3 client and bucket settings. Defaults to config.DefaultLoader.
	Loader *config.Loader

	// NoProgressBar disables the progress bar.
	NoProgressBar bool

	// Concurrency is the number of parts downloaded at the same time from S3. Defaults to manager.DefaultDownloadConcurrency.
	Concurrency int
}

// Load returns the content of name, which may be a local path or an s3://bucket/key URI.
func Load(ctx context.Context, name string, optFns ...func(*Options)) ([]byte, error) {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.Loader == nil {
		opts.Loader = config.DefaultLoader
	}

	if internal.IsS3URI(name) {
		return loadS3(ctx, name, opts)
	}

	return loadFile(ctx, name, opts)
}

func loadFile(ctx context.Context, name string, opts *Options) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open file error: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file error: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf(`"%s" is a directory`, name)
	}

	buf := bytes.NewBuffer(make([]byte, 0, fi.Size()))

	bar := internal.NewTransferBar(fi.Size(), "reading", name, opts.NoProgressBar)
	defer bar.Close()

	if _, err = io.Copy(io.MultiWriter(buf, bar), &contextReader{ctx: ctx, r: f}); err != nil {
		return nil, fmt.Errorf("read file error: %w", err)
	}

	return buf.Bytes(), nil
}

func loadS3(ctx context.Context, uri string, opts *Options) ([]byte, error) {
	bucket, key, err := internal.ParseS3URI(uri)
	if err != nil {
		return nil, fmt.Errorf(`invalid s3 URI "%s": %w`, uri, err)
	}

	client, err := opts.Loader.NewS3ClientForBucket(ctx, bucket, func(options *s3.Options) {
		// without this, getting a bunch of WARN message below:
		// WARN Response has no supported checksum. Not validating response payload.
		options.DisableLogOutputChecksumValidationSkipped = true
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client error: %w", err)
	}

	expectedBucketOwner := opts.Loader.ForBucket(bucket).ExpectedBucketOwner

	// headObject to size the buffer and the progress bar.
	headObjectResult, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: expectedBucketOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("head object error: %w", err)
	}
	size := aws.ToInt64(headObjectResult.ContentLength)

	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))

	bar := internal.NewTransferBar(size, "downloading", key, opts.NoProgressBar)
	defer bar.Close()
	w := &progressWriterAt{w: buf, bar: bar}

	if _, err = manager.NewDownloader(client, func(d *manager.Downloader) {
		if opts.Concurrency > 0 {
			d.Concurrency = opts.Concurrency
		}
	}).Download(ctx, w, &s3.GetObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: expectedBucketOwner,
		IfMatch:             headObjectResult.ETag,
	}); err != nil {
		return nil, fmt.Errorf("download error: %w", err)
	}

	return buf.Bytes(), nil
}

// progressWriterAt reports the bytes written by the concurrent part downloads.
type progressWriterAt struct {
	w   io.WriterAt
	bar *progressbar.ProgressBar
}

func (p *progressWriterAt) WriteAt(b []byte, off int64) (int, error) {
	n, err := p.w.WriteAt(b, off)
	_ = p.bar.Add(n)
	return n, err
}

// contextReader stops reading once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
