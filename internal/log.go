package internal

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/nguyengg/unarchive/util"
)

// Prefix creates a consistent prefix for all file-based commands to use.
//
// i and n are the zero-based ordinal and expected count.
func Prefix(i, n int, name string) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i+1, n, TruncateName(name))
}

// TruncateName returns the last element of a local path or S3 key, shortened for display.
func TruncateName(name string) string {
	return util.TruncateRightWithSuffix(path.Base(filepath.ToSlash(name)), 30, "...")
}

// NewLogger returns a logger to stderr whose messages are prefixed with Prefix.
func NewLogger(i, n int, name string) *log.Logger {
	return log.New(os.Stderr, Prefix(i, n, name), log.LstdFlags|log.Lmsgprefix)
}
