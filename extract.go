package unarchive

import (
	"context"
	"iter"

	"github.com/nguyengg/unarchive/pointer"
)

// Extract returns an iterator over the entries of the archive in data.
//
// The memory holding the archive is released once the returned entries become unreachable. Use New and
// Archive.Close to release it deterministically.
func Extract(ctx context.Context, data []byte, optFns ...func(*Options)) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		a, err := New(data, optFns...)
		if err != nil {
			yield(nil, err)
			return
		}

		for e, err := range a.Entries(ctx) {
			if !yield(e, err) {
				return
			}
		}
	}
}

// ExtractLimited is a variant of Extract whose entries come from Archive.LimitedEntries, so loading content, including
// that of nested archives, fails with ErrExceedSizeLimit past Options.SizeLimit.
func ExtractLimited(ctx context.Context, data []byte, optFns ...func(*Options)) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		a, err := New(data, optFns...)
		if err != nil {
			yield(nil, err)
			return
		}

		for e, err := range a.LimitedEntries(ctx) {
			if !yield(e, err) {
				return
			}
		}
	}
}

// ExtractFrom is a variant of Extract for an archive that is already in foreign memory.
//
// The caller keeps ownership of buf.
func ExtractFrom(ctx context.Context, buf *pointer.Pointer, optFns ...func(*Options)) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		a, err := NewFromPointer(buf, optFns...)
		if err != nil {
			yield(nil, err)
			return
		}

		for e, err := range a.Entries(ctx) {
			if !yield(e, err) {
				return
			}
		}
	}
}

// ExtractAll returns every entry of the archive in data with its content loaded.
//
// If the total size of the entries exceeds Options.SizeLimit, ErrExceedSizeLimit is returned and no entries are.
func ExtractAll(ctx context.Context, data []byte, optFns ...func(*Options)) ([]*Entry, error) {
	a, err := New(data, optFns...)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.All(ctx)
}

// ExtractAllFrom is a variant of ExtractAll for an archive that is already in foreign memory.
//
// The caller keeps ownership of buf.
func ExtractAllFrom(ctx context.Context, buf *pointer.Pointer, optFns ...func(*Options)) ([]*Entry, error) {
	a, err := NewFromPointer(buf, optFns...)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.All(ctx)
}
