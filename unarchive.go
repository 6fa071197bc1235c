// Package unarchive extracts archives in memory as a lazy stream of entries.
//
// The simplest way to use the package is ExtractAll, which returns every entry with its content loaded:
//
//	entries, err := unarchive.ExtractAll(ctx, data)
//
// Extract returns the same entries lazily through an iterator. The content of an entry is read from the archive only
// when Entry.Data is called. Reading it while the entry is current is cheap; reading it after the iterator has moved
// on means the archive must be replayed from the start, which is much slower.
//
//	for e, err := range unarchive.Extract(ctx, data, unarchive.WithPassphrase("secret")) {
//		if err != nil {
//			return err
//		}
//		if e.Type == unarchive.TypeFile {
//			data, err := e.Data()
//			// ...
//		}
//	}
//
// Use New and Archive.Close to control when the memory holding the archive is released.
package unarchive

import (
	"fmt"
	"log"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nguyengg/unarchive/bridge"
	"github.com/nguyengg/unarchive/decoder"
	"golang.org/x/text/encoding"
)

const (
	// MaxRecursionDepth is the maximum number of nested archive levels that recursive extraction descends into.
	MaxRecursionDepth = 16

	// DefaultSizeLimit is the default Options.SizeLimit.
	DefaultSizeLimit int64 = 128 << 20

	// Unlimited can be used as Options.SizeLimit to disable the limit.
	Unlimited int64 = -1
)

// Options customises extraction.
//
// The zero value is the default configuration.
type Options struct {
	// Passphrase is used to decrypt encrypted archives.
	Passphrase string

	// BaseDir is prepended to every relative entry path.
	BaseDir string

	// Encoding is the label of the text encoding of paths and link targets, such as "gb18030" or "shift_jis".
	//
	// Paths that are valid UTF-8 are always used as is. If empty, a fallback derived from the locale is tried
	// before windows-1252.
	Encoding string

	// StripComponents removes this many leading elements from every path. Entries that have no elements left are
	// dropped.
	StripComponents int

	// NoNormalize disables path normalization.
	NoNormalize bool

	// Recursive enables extraction of nested archives.
	//
	// A file entry that is itself an archive is replaced by the entries of that archive, whose paths are relative
	// to the directory containing the file.
	Recursive bool

	// KeepDotDir keeps the "." directory entry that some archives use for their own root.
	KeepDotDir bool

	// Include and Exclude are doublestar patterns matched against normalized paths. If Include is not empty,
	// entries that match none of its patterns are dropped. Entries that match any Exclude pattern are dropped.
	// Neither applies to the entries of nested archives.
	Include []string
	Exclude []string

	// SizeLimit is the total size of content that ExtractAll and Archive.All may load. Zero means
	// DefaultSizeLimit, a negative value means no limit.
	SizeLimit int64

	// Engine is the decoder. Defaults to decoder.New.
	Engine bridge.Engine

	// Logger receives warnings. Defaults to log.Default.
	Logger *log.Logger

	// NoWarnings disables all warnings.
	NoWarnings bool
}

// WithPassphrase sets Options.Passphrase.
func WithPassphrase(passphrase string) func(*Options) {
	return func(opts *Options) {
		opts.Passphrase = passphrase
	}
}

// config is the resolved form of Options.
type config struct {
	Options
	encoding encoding.Encoding
}

func newConfig(optFns []func(*Options)) (*config, error) {
	c := &config{}
	for _, fn := range optFns {
		fn(&c.Options)
	}

	if c.Engine == nil {
		c.Engine = decoder.New()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.StripComponents < 0 {
		return nil, fmt.Errorf("strip components must be non-negative, got %d", c.StripComponents)
	}

	if c.Encoding != "" {
		enc, err := lookupEncoding(c.Encoding)
		if err != nil {
			return nil, err
		}
		c.encoding = enc
	}

	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	return c, nil
}

func (c *config) sizeLimit() int64 {
	switch {
	case c.SizeLimit == 0:
		return DefaultSizeLimit
	case c.SizeLimit < 0:
		return Unlimited
	default:
		return c.SizeLimit
	}
}

func (c *config) warnf(format string, v ...any) {
	if !c.NoWarnings {
		c.Logger.Printf("WARN "+format, v...)
	}
}
