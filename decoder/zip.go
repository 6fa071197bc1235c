package decoder

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"iter"

	"github.com/yeka/zip"
)

// maxLinkTargetSize caps how much of a symlink's content is read as its target.
const maxLinkTargetSize = 32 * 1024

// hasEncryptedEntries opens data as a zip archive that supports ZipCrypto and AES.
//
// archives.Zip does not support encryption at all, so any zip archive with at least one encrypted entry is read with
// this reader instead.
func hasEncryptedEntries(data []byte) (*zip.Reader, bool, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, false, err
	}

	for _, f := range zr.File {
		if f.IsEncrypted() {
			return zr, true, nil
		}
	}

	return zr, false, nil
}

// encryptedZipEntries walks zr, decrypting entries with passphrase.
func encryptedZipEntries(ctx context.Context, zr *zip.Reader, passphrase string) iter.Seq2[item, error] {
	return func(yield func(item, error) bool) {
		for _, f := range zr.File {
			if err := ctx.Err(); err != nil {
				yield(item{}, err)
				return
			}

			it := item{
				name:      f.Name,
				mode:      f.Mode(),
				mtime:     f.ModTime(),
				encrypted: f.IsEncrypted(),
				open: func() (io.ReadCloser, error) {
					if f.IsEncrypted() {
						f.SetPassword(passphrase)
					}
					return f.Open()
				},
			}

			switch {
			case it.mode&fs.ModeSymlink != 0:
				link, err := readLinkTarget(it.open)
				if err != nil {
					yield(item{}, err)
					return
				}
				it.link = link
			case it.mode.IsRegular():
				it.size = int64(f.UncompressedSize64)
			}

			if !yield(it, nil) {
				return
			}
		}
	}
}

func readLinkTarget(open func() (io.ReadCloser, error)) (string, error) {
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxLinkTargetSize))
	return string(b), err
}
