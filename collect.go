package unarchive

import (
	"context"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/unarchive/arcerr"
)

// All returns every entry with its content loaded.
//
// Entries come from LimitedEntries, so the content of every entry, including nested archives that were opened to
// extract their own entries, counts against Options.SizeLimit. Once the limit is exceeded, ErrExceedSizeLimit is
// returned and none of the entries are.
func (a *Archive) All(ctx context.Context) ([]*Entry, error) {
	var entries []*Entry
	for e, err := range a.LimitedEntries(ctx) {
		if err != nil {
			return nil, err
		}

		if _, err = e.Data(); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// budget is how much content may still be loaded. It is shared by an archive and all archives nested in it.
type budget struct {
	mu        sync.Mutex
	limit     int64
	remaining uint64
}

// newBudget returns nil, which charges nothing, if limit is negative.
func newBudget(limit int64) *budget {
	if limit < 0 {
		return nil
	}

	return &budget{limit: limit, remaining: uint64(limit)}
}

// charge takes the declared size of e from the budget.
func (b *budget) charge(e *Entry) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Size > b.remaining {
		return arcerr.Newf(arcerr.ErrExceedSizeLimit, 0, "%s: content exceeds size limit of %s", e.Path, humanize.IBytes(uint64(b.limit)))
	}

	b.remaining -= e.Size
	return nil
}
