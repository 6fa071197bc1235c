package unarchive

import "github.com/nguyengg/unarchive/arcerr"

// Error kinds, see package arcerr. Use errors.Is to check for a specific kind; every error returned by this package
// while decoding matches ErrArchive.
var (
	ErrArchive              = arcerr.ErrArchive
	ErrNull                 = arcerr.ErrNull
	ErrPassphrase           = arcerr.ErrPassphrase
	ErrFileRead             = arcerr.ErrFileRead
	ErrRetry                = arcerr.ErrRetry
	ErrFatal                = arcerr.ErrFatal
	ErrFailed               = arcerr.ErrFailed
	ErrExceedSizeLimit      = arcerr.ErrExceedSizeLimit
	ErrExceedRecursionLimit = arcerr.ErrExceedRecursionLimit
)

// Error is the type of errors returned by this package while decoding.
type Error = arcerr.Error
