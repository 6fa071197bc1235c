package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/unarchive"
	"github.com/nguyengg/unarchive/internal/config"
)

// notifyContext returns a context that is cancelled on interrupt.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
}

// archiveOptions are the flags shared by list and extract. Each flag that is not given falls back to the [extract]
// section of the .unarchive configuration file.
type archiveOptions struct {
	Passphrase      string   `long:"passphrase" description:"passphrase of encrypted archives"`
	Encoding        string   `long:"encoding" description:"text encoding of paths that are not UTF-8, such as gb18030 or shift_jis"`
	StripComponents *int     `long:"strip-components" description:"remove this many leading path elements"`
	Recursive       bool     `short:"r" long:"recursive" description:"also extract archives found inside archives"`
	Include         []string `short:"i" long:"include" description:"only extract paths that match one of these doublestar patterns"`
	Exclude         []string `short:"e" long:"exclude" description:"do not extract paths that match any of these doublestar patterns"`
	SizeLimit       string   `long:"size-limit" description:"maximum total size of content loaded in memory, such as 256MiB; \"unlimited\" to disable"`
	KeepDotDir      bool     `long:"keep-dot-dir" description:"keep the \".\" directory entry"`
	NoWarnings      bool     `short:"q" long:"quiet" description:"do not print warnings"`
}

func (o *archiveOptions) validate(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if o.StripComponents != nil && *o.StripComponents < 0 {
		return fmt.Errorf("strip-components must be non-negative")
	}

	return nil
}

// resolve merges the flags with the configuration file.
func (o *archiveOptions) resolve(cfg config.ExtractConfig) (func(*unarchive.Options), error) {
	sizeLimit := cfg.SizeLimit
	switch o.SizeLimit {
	case "":
	case "unlimited":
		sizeLimit = unarchive.Unlimited
	default:
		n, err := humanize.ParseBytes(o.SizeLimit)
		if err != nil {
			return nil, fmt.Errorf(`invalid size-limit "%s": %w`, o.SizeLimit, err)
		}
		sizeLimit = int64(n)
	}

	return func(opts *unarchive.Options) {
		opts.Passphrase = firstNonEmpty(o.Passphrase, cfg.Passphrase)
		opts.Encoding = firstNonEmpty(o.Encoding, cfg.Encoding)
		opts.StripComponents = cfg.StripComponents
		if o.StripComponents != nil {
			opts.StripComponents = *o.StripComponents
		}
		opts.Recursive = o.Recursive || cfg.Recursive
		opts.Include = o.Include
		if len(opts.Include) == 0 {
			opts.Include = cfg.Include
		}
		opts.Exclude = append(o.Exclude, cfg.Exclude...)
		opts.SizeLimit = sizeLimit
		opts.KeepDotDir = o.KeepDotDir
		opts.NoWarnings = o.NoWarnings
	}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}

// files converts the positional arguments.
func files(args []flags.Filename) []string {
	names := make([]string, 0, len(args))
	for _, a := range args {
		names = append(names, string(a))
	}

	return names
}
