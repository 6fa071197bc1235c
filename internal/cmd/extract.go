package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/unarchive"
	"github.com/nguyengg/unarchive/internal"
	"github.com/nguyengg/unarchive/internal/config"
	"github.com/nguyengg/unarchive/internal/source"
	"github.com/nguyengg/unarchive/unpack"
	"github.com/nguyengg/unarchive/util"
)

// Extract writes the content of archives to directories.
type Extract struct {
	archiveOptions
	Dir            string `short:"C" long:"directory" description:"extract to this directory instead of a new directory named after the archive"`
	Overwrite      bool   `short:"f" long:"overwrite" description:"overwrite existing files in the output directory"`
	MaxConcurrency int    `short:"P" long:"max-concurrency" description:"write up to this many files at the same time"`
	Args           struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or s3:// URIs of the archives to be extracted" required:"yes"`
	} `positional-args:"yes"`

	logger *log.Logger
}

func (c *Extract) Execute(args []string) error {
	if err := c.validate(args); err != nil {
		return err
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max-concurrency must be non-negative")
	}

	cfg, err := config.ForExtract()
	if err != nil {
		return err
	}
	optFn, err := c.resolve(cfg)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext()
	defer stop()

	success := 0
	names := files(c.Args.Files)
	n := len(names)
	for i, name := range names {
		c.logger = internal.NewLogger(i, n, name)
		c.logger.Printf("start extracting")

		if err = c.extract(ctx, name, cfg, optFn); err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		c.logger.Printf("extract error: %v", err)
	}

	log.Printf("successfully extracted %d/%d archives", success, n)
	if success != n {
		return fmt.Errorf("failed to extract %d archives", n-success)
	}
	return nil
}

func (c *Extract) extract(ctx context.Context, name string, cfg config.ExtractConfig, optFn func(*unarchive.Options)) error {
	data, err := source.Load(ctx, name)
	if err != nil {
		return err
	}

	logger := func(opts *unarchive.Options) {
		opts.Logger = c.logger
	}

	dir, strip := c.Dir, 0
	if dir == "" {
		if dir, strip, err = c.outputDir(ctx, name, data, optFn, logger); err != nil {
			return err
		}
	}

	res, err := unpack.ToDir(ctx, data, dir, func(opts *unpack.Options) {
		optFn(&opts.Options)
		logger(&opts.Options)
		opts.StripComponents += strip
		opts.Overwrite = c.Overwrite || cfg.Overwrite
		opts.Concurrency = max(c.MaxConcurrency, cfg.Concurrency)
	})
	if err != nil {
		return err
	}

	c.logger.Printf("done extracting %d files (%s), %d directories, %d links to %s",
		res.Files, humanize.IBytes(uint64(res.Bytes)), res.Dirs, res.Symlinks+res.Hardlinks, dir)
	if res.Skipped > 0 {
		c.logger.Printf("skipped %d entries", res.Skipped)
	}

	return nil
}

// outputDir creates a new directory in the working directory to extract to.
//
// If every entry of the archive is under the same top-level directory, the new directory is named after it and
// one more path element must be stripped. Otherwise it is named after the archive.
func (c *Extract) outputDir(ctx context.Context, name string, data []byte, optFns ...func(*unarchive.Options)) (string, int, error) {
	finder := &internal.RootDirFinder{}
	for e, err := range unarchive.ExtractLimited(ctx, data, optFns...) {
		if err != nil {
			return "", 0, err
		}

		if !finder.Add(e.Path, e.Type == unarchive.TypeDir) {
			break
		}
	}

	if root := finder.Root(); root != "" {
		dir, err := util.MkExclDir(".", root, 0755)
		return dir, 1, err
	}

	stem, _ := util.StemAndExt(filepath.Base(name))
	dir, err := util.MkExclDir(".", stem, 0755)
	return dir, 0, err
}
