// Package arcerr defines the errors returned by the archive decoding layers.
//
// Every error produced by this module's decoding and policy code is an [*Error]. Use [errors.Is] with one of the
// sentinel kinds to check for a specific failure, or with [ErrArchive] to match any of them.
package arcerr

import (
	"errors"
	"fmt"
)

// Decoder errno values.
const (
	// EPASS is reported when an archive requires a passphrase that was not given or is wrong.
	EPASS = -37455
	// ENULL is reported when a pointer that should be valid turned out to be NULL.
	ENULL = -37456

	ErrnoMisc       = -1
	ErrnoFileFormat = -2
	ErrnoProgrammer = -3
)

// Sentinel kinds. ErrArchive is the base kind and matches every [*Error].
var (
	ErrArchive              = errors.New("archive error")
	ErrNull                 = errors.New("null pointer")
	ErrPassphrase           = errors.New("passphrase error")
	ErrFileRead             = errors.New("file read error")
	ErrRetry                = errors.New("retry error")
	ErrFatal                = errors.New("fatal error")
	ErrFailed               = errors.New("failed error")
	ErrExceedSizeLimit      = errors.New("exceed size limit")
	ErrExceedRecursionLimit = errors.New("exceed recursion limit")
)

// Error is a decoder or policy failure.
type Error struct {
	// Kind is one of the sentinel errors in this package.
	Kind error
	// Code is the decoder errno or status code, 0 if not applicable.
	Code int
	// Message is the decoder's message if available.
	Message string
	// Err is the underlying cause, may be nil.
	Err error
}

// New creates a new Error of the given kind.
func New(kind error, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf is a variant of New that formats the message.
func Newf(kind error, code int, format string, a ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap creates a new Error of the given kind that wraps err.
func Wrap(kind error, code int, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	kind := ErrArchive
	if e.Kind != nil {
		kind = e.Kind
	}

	switch {
	case e.Message == "":
		return fmt.Sprintf("%v (code %d)", kind, e.Code)
	case e.Code == 0:
		return fmt.Sprintf("%v: %s", kind, e.Message)
	default:
		return fmt.Sprintf("%v: %s (code %d)", kind, e.Message, e.Code)
	}
}

// Is reports whether target is ErrArchive or the Kind of this error.
func (e *Error) Is(target error) bool {
	return target == ErrArchive || (e.Kind != nil && target == e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the code of the first [*Error] in err's chain, or 0 if there is none.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return 0
}
