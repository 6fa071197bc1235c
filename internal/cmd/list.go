package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/unarchive"
	"github.com/nguyengg/unarchive/internal"
	"github.com/nguyengg/unarchive/internal/config"
	"github.com/nguyengg/unarchive/internal/source"
)

// List prints the entries of archives.
type List struct {
	archiveOptions
	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or s3:// URIs of the archives to be listed" required:"yes"`
	} `positional-args:"yes"`

	out    io.Writer
	logger *log.Logger
}

func (c *List) Execute(args []string) error {
	if err := c.validate(args); err != nil {
		return err
	}

	cfg, err := config.ForExtract()
	if err != nil {
		return err
	}
	optFn, err := c.resolve(cfg)
	if err != nil {
		return err
	}

	if c.out == nil {
		c.out = os.Stdout
	}

	ctx, stop := notifyContext()
	defer stop()

	success := 0
	names := files(c.Args.Files)
	n := len(names)
	for i, name := range names {
		c.logger = internal.NewLogger(i, n, name)

		if err = c.list(ctx, name, optFn); err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		c.logger.Printf("list error: %v", err)
	}

	if n > 1 {
		log.Printf("successfully listed %d/%d archives", success, n)
	}
	if success != n {
		return fmt.Errorf("failed to list %d archives", n-success)
	}
	return nil
}

func (c *List) list(ctx context.Context, name string, optFn func(*unarchive.Options)) error {
	data, err := source.Load(ctx, name, func(opts *source.Options) {
		opts.NoProgressBar = true
	})
	if err != nil {
		return err
	}

	var count int
	var size uint64
	for e, err := range unarchive.ExtractLimited(ctx, data, optFn, func(opts *unarchive.Options) {
		opts.Logger = c.logger
	}) {
		if err != nil {
			return err
		}

		count++
		size += e.Size
		_, _ = fmt.Fprintln(c.out, formatEntry(e))
	}

	c.logger.Printf("%d entries, %s", count, humanize.IBytes(size))
	return nil
}

// formatEntry formats an entry like ls -l.
func formatEntry(e *unarchive.Entry) string {
	mtime := "-"
	if !e.ModTime.IsZero() {
		mtime = e.ModTime.UTC().Format(time.DateTime)
	}

	path := e.Path
	switch {
	case e.Type == unarchive.TypeSymlink:
		path += " -> " + e.Link
	case e.IsHardlink():
		path += " link to " + e.Link
	}

	return fmt.Sprintf("%s %9s %s %s", e.Mode(), humanize.IBytes(e.Size), mtime, path)
}
