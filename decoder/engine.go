// Package decoder is the default archive decoder, built on github.com/mholt/archives.
//
// Engine implements bridge.Engine. Supported formats are zip (including ZipCrypto and AES encrypted entries), tar,
// 7z, rar, and tar compressed with any of gzip, bzip2, xz, zstd, lz4, lzip, snappy, minlz or brotli.
package decoder

import (
	"bytes"
	"context"
	"io"

	"github.com/mholt/archives"
	"github.com/nguyengg/unarchive/arcerr"
	"github.com/nguyengg/unarchive/bridge"
)

// ProbeSize is the number of bytes that Probe needs to recognise most formats.
const ProbeSize = 1024

// Engine opens sessions over in-memory archives.
//
// The zero value is ready for use.
type Engine struct {
}

// New returns a new Engine.
func New() *Engine {
	return &Engine{}
}

var _ bridge.Engine = (*Engine)(nil)

// Open implements bridge.Engine.
//
// Errors are reported through the returned session's Errno: arcerr.ErrnoFileFormat if data is not a recognised
// archive, arcerr.EPASS if the archive has encrypted entries and passphrase is empty.
func (e *Engine) Open(ctx context.Context, data []byte, passphrase string, child bool) bridge.Handle {
	s := &session{ctx: ctx}

	f, err := identify(ctx, data, child)
	if err != nil {
		s.setError(arcerr.ErrnoFileFormat, "Unrecognized archive format")
		return s
	}
	if f.extraction == nil {
		s.setError(arcerr.ErrnoFileFormat, "Unrecognized archive format: "+f.compression.Extension()+" stream is not an archive")
		return s
	}

	var seq func(yield func(item, error) bool)

	switch x := f.extraction.(type) {
	case archives.Zip:
		zr, encrypted, err := hasEncryptedEntries(data)
		switch {
		case err != nil:
			s.setError(classify(err))
			return s
		case encrypted && passphrase == "":
			s.setError(arcerr.EPASS, "Archive requires password")
			return s
		case encrypted:
			seq = encryptedZipEntries(ctx, zr, passphrase)
		default:
			seq = walk(ctx, x, bytes.NewReader(data))
		}
	case archives.SevenZip:
		x.Password = passphrase
		seq = walk(ctx, x, bytes.NewReader(data))
	case archives.Rar:
		x.Password = passphrase
		seq = walk(ctx, compressed(f.compression, x), bytes.NewReader(data))
	default:
		seq = walk(ctx, compressed(f.compression, x), bytes.NewReader(data))
	}

	s.start(seq, passphrase)
	return s
}

// Probe returns true if prefix looks like the start of an archive or a compressed stream.
//
// prefix should be at least ProbeSize bytes unless the content is shorter than that. Formats without a magic number
// are never recognised by Probe.
func (e *Engine) Probe(ctx context.Context, prefix []byte) bool {
	f, err := identify(ctx, prefix, true)
	return err == nil && (f.extraction != nil || f.compression != nil)
}

// format is the result of identify.
type format struct {
	compression archives.Compression
	extraction  archives.Extraction
}

// extractions are tried in order on the raw bytes.
var extractions = []archives.Extraction{
	archives.Zip{},
	archives.SevenZip{},
	archives.Rar{},
	archives.Tar{},
}

// streamExtractions are tried in order on decompressed bytes, so they must not need io.ReaderAt.
var streamExtractions = []archives.Extraction{
	archives.Tar{},
	archives.Rar{},
}

// compressions are tried in order after extractions fail to match.
var compressions = []archives.Compression{
	archives.Gz{},
	archives.Bz2{},
	archives.Xz{},
	archives.Zstd{},
	archives.Lz4{},
	archives.Lzip{},
	archives.Sz{},
	archives.MinLZ{},
}

// noMagic are compressions without a magic number; they are only tried last and never for nested content.
var noMagic = []archives.Compression{
	archives.Brotli{},
}

// identify finds the format of data.
//
// Unlike archives.Identify, the order in which formats are tried is fixed. Archive formats are tried on the raw
// bytes first so that a compression format without a magic number can never shadow a real archive.
func identify(ctx context.Context, data []byte, child bool) (f format, err error) {
	for _, x := range extractions {
		if matched(ctx, x, bytes.NewReader(data)) {
			f.extraction = x
			return f, nil
		}
	}

	candidates := compressions
	if !child {
		candidates = append(candidates[:len(candidates):len(candidates)], noMagic...)
	}

	for _, c := range candidates {
		if !matched(ctx, c, bytes.NewReader(data)) {
			continue
		}

		f.compression = c
		for _, x := range streamExtractions {
			rc, err := c.OpenReader(bytes.NewReader(data))
			if err != nil {
				break
			}

			ok := matched(ctx, x, rc)
			_ = rc.Close()
			if ok {
				f.extraction = x
				break
			}
		}

		return f, nil
	}

	return f, archives.NoMatch
}

func matched(ctx context.Context, m archives.Format, stream io.Reader) bool {
	mr, err := m.Match(ctx, "", stream)
	if err != nil {
		return false
	}

	return mr.ByStream
}

func compressed(c archives.Compression, x archives.Extraction) archives.Extraction {
	if c == nil {
		return x
	}

	return archives.CompressedArchive{Extraction: x, Compression: c}
}
