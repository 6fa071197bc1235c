// Package unpack writes the entries of an archive to a directory.
package unpack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/unarchive"
	"github.com/nguyengg/unarchive/posixpath"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency is the default Options.Concurrency.
const DefaultConcurrency = 8

// Options customises ToDir.
type Options struct {
	// Options is passed on to unarchive.New.
	unarchive.Options

	// Overwrite replaces existing files and links. By default, ToDir fails if a file already exists.
	Overwrite bool

	// Concurrency is the maximum number of files being written at the same time. Defaults to DefaultConcurrency.
	Concurrency int
}

// Result counts what ToDir did.
type Result struct {
	Dirs, Files, Symlinks, Hardlinks, Skipped int
	// Bytes is the total size of the files written.
	Bytes int64
}

// ToDir extracts the archive in data to dir, creating dir if it does not exist.
//
// Only directories, files, symbolic links and hard links are written; other entry types and entries whose path would
// end up outside dir are skipped with a warning. Directories are created as they are found, files and symbolic links
// are written concurrently, hard links are created last once their targets exist. Permissions and timestamps are
// applied to everything that is written. The content read from the archive counts against Options.SizeLimit, and
// ErrExceedSizeLimit is returned once that is exceeded.
func ToDir(ctx context.Context, data []byte, dir string, optFns ...func(*Options)) (Result, error) {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	u := &unpacker{opts: opts, logger: opts.Logger}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return u.result(), fmt.Errorf(`create output directory "%s" error: %w`, dir, err)
	}
	if fi, err := os.Stat(dir); err != nil {
		return u.result(), err
	} else if !fi.IsDir() {
		return u.result(), fmt.Errorf(`output path "%s" is not a directory`, dir)
	}

	var err error
	if u.dir, err = filepath.Abs(dir); err != nil {
		return u.result(), err
	}

	a, err := unarchive.New(data, func(o *unarchive.Options) {
		*o = opts.Options
	})
	if err != nil {
		return u.result(), err
	}
	defer a.Close()

	return u.unpack(ctx, a)
}

type unpacker struct {
	opts   *Options
	logger *log.Logger
	dir    string

	dirs, files, symlinks, hardlinks, skipped atomic.Int64
	bytes                                     atomic.Int64
}

func (u *unpacker) result() Result {
	return Result{
		Dirs:      int(u.dirs.Load()),
		Files:     int(u.files.Load()),
		Symlinks:  int(u.symlinks.Load()),
		Hardlinks: int(u.hardlinks.Load()),
		Skipped:   int(u.skipped.Load()),
		Bytes:     u.bytes.Load(),
	}
}

func (u *unpacker) warnf(format string, v ...any) {
	u.skipped.Add(1)
	if !u.opts.NoWarnings {
		u.logger.Printf("WARN "+format, v...)
	}
}

// dirEntry is a directory whose mode and timestamps are applied after everything inside it has been written.
type dirEntry struct {
	path         string
	perm         fs.FileMode
	atime, mtime time.Time
}

func (u *unpacker) unpack(ctx context.Context, a *unarchive.Archive) (Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)

	var (
		dirs      []dirEntry
		hardlinks []*unarchive.Entry
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
		i         = 0
	)

	err := func() error {
		for e, err := range a.LimitedEntries(ctx) {
			if err != nil {
				return err
			}

			i++

			path, ok := u.target(e.Path)
			if !ok {
				u.warnf("entry has a path that goes outside the output directory: %s, skipping", e.Path)
				continue
			}

			switch {
			case e.Type == unarchive.TypeDir:
				if err = os.MkdirAll(path, 0755); err != nil {
					return fmt.Errorf(`create directory "%s" error: %w`, e.Path, err)
				}
				dirs = append(dirs, dirEntry{path: path, perm: e.Perm, atime: e.AccessTime, mtime: e.ModTime})
				u.dirs.Add(1)

			case e.Type == unarchive.TypeFile:
				data, err := e.Data()
				if err != nil {
					return err
				}

				g.Go(func() error {
					return u.writeFile(path, e, data)
				})

				sometimes.Do(func() {
					u.logger.Printf("[%d] (%s) %s", i, humanize.Bytes(e.Size), e.Path)
				})

			case e.Type == unarchive.TypeSymlink:
				if e.Link == "" {
					u.warnf("invalid symlink: %s, skipping", e.Path)
					continue
				}

				g.Go(func() error {
					return u.symlink(path, e)
				})

			case e.IsHardlink():
				hardlinks = append(hardlinks, e)

			default:
				u.warnf("unsupported entry type %q: %s, skipping", e.Type, e.Path)
			}
		}

		return nil
	}()

	if err = errors.Join(err, g.Wait()); err != nil {
		return u.result(), err
	}

	for _, e := range hardlinks {
		if err = u.link(e); err != nil {
			return u.result(), err
		}
	}

	// deepest first so that setting the mode of a parent never prevents setting that of a child.
	slices.SortFunc(dirs, func(a, b dirEntry) int {
		return strings.Compare(b.path, a.path)
	})
	for _, d := range dirs {
		if err = os.Chmod(d.path, d.perm); err != nil {
			return u.result(), fmt.Errorf(`change mode of "%s" error: %w`, d.path, err)
		}
		if err = os.Chtimes(d.path, d.atime, d.mtime); err != nil {
			return u.result(), fmt.Errorf(`change times of "%s" error: %w`, d.path, err)
		}
	}

	return u.result(), nil
}

// target returns the local path of the entry at the given archive path, false if that would be outside the output
// directory or the output directory itself.
func (u *unpacker) target(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	base := filepath.ToSlash(u.dir)
	rel := posixpath.Relative(base, posixpath.Resolve(base, name))
	if rel == "" || rel == ".." || strings.HasPrefix(rel, "../") || posixpath.IsAbsolute(rel) {
		return "", false
	}

	return filepath.Join(u.dir, filepath.FromSlash(rel)), true
}

func (u *unpacker) flags() int {
	if u.opts.Overwrite {
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	return os.O_WRONLY | os.O_CREATE | os.O_EXCL
}

func (u *unpacker) writeFile(path string, e *unarchive.Entry, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf(`create path to file "%s" error: %w`, e.Path, err)
	}

	f, err := os.OpenFile(path, u.flags(), e.Perm.Perm())
	if err != nil {
		return fmt.Errorf(`create file "%s" error: %w`, e.Path, err)
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf(`write to file "%s" error: %w`, e.Path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf(`close file "%s" error: %w`, e.Path, err)
	}

	// O_TRUNC keeps the mode of an existing file.
	if err = os.Chmod(path, e.Perm); err != nil {
		return fmt.Errorf(`change mode of "%s" error: %w`, e.Path, err)
	}
	if err = os.Chtimes(path, e.AccessTime, e.ModTime); err != nil {
		return fmt.Errorf(`change times of "%s" error: %w`, e.Path, err)
	}

	u.files.Add(1)
	u.bytes.Add(int64(len(data)))
	return nil
}

func (u *unpacker) symlink(path string, e *unarchive.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf(`create path to symlink "%s" error: %w`, e.Path, err)
	}

	if err := u.replace(path); err != nil {
		return err
	}
	if err := os.Symlink(filepath.FromSlash(e.Link), path); err != nil {
		return fmt.Errorf(`create symlink "%s" error: %w`, e.Path, err)
	}
	if err := lutimes(path, e.AccessTime, e.ModTime); err != nil {
		return fmt.Errorf(`change times of symlink "%s" error: %w`, e.Path, err)
	}

	u.symlinks.Add(1)
	return nil
}

// link creates a hard link. Unlike symbolic links, the target of a hard link is a path inside the archive.
func (u *unpacker) link(e *unarchive.Entry) error {
	path, _ := u.target(e.Path)

	target, ok := u.target(e.Link)
	if !ok {
		u.warnf("invalid hardlink: %s -> %s, skipping", e.Path, e.Link)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf(`create path to hardlink "%s" error: %w`, e.Path, err)
	}
	if err := u.replace(path); err != nil {
		return err
	}
	if err := os.Link(target, path); err != nil {
		return fmt.Errorf(`create hardlink "%s" error: %w`, e.Path, err)
	}

	// the link shares its inode with target, so this changes both.
	if err := os.Chmod(path, e.Perm); err != nil {
		return fmt.Errorf(`change mode of hardlink "%s" error: %w`, e.Path, err)
	}
	if err := os.Chtimes(path, e.AccessTime, e.ModTime); err != nil {
		return fmt.Errorf(`change times of hardlink "%s" error: %w`, e.Path, err)
	}

	u.hardlinks.Add(1)
	return nil
}

// replace removes what is at path if Options.Overwrite is set so that a link can be created there.
func (u *unpacker) replace(path string) error {
	if !u.opts.Overwrite {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(`remove "%s" error: %w`, path, err)
	}

	return nil
}
