package paging

import (
	"context"
	"errors"
	"sync"

	"doclib/domain/library"
)

// Loader consumes a PageSource one page at a time and accumulates the normalized items.
// At most one pull may be outstanding; results of a pull that finishes after Reset are dropped.
type Loader struct {
	mu        sync.Mutex
	source    PageSource
	normalize library.Normalizer
	items     []library.Item
	done      bool
	pulling   bool
	epoch     uint64
}

// NewLoader creates a loader over source.
func NewLoader(source PageSource) *Loader {
	return &Loader{
		source:    source,
		normalize: library.ForProfile(source.Profile()),
	}
}

// HasMore reports whether the source has not yet signaled exhaustion.
func (l *Loader) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.done
}

// Items returns a copy of the accumulated items in load order.
func (l *Loader) Items() []library.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]library.Item(nil), l.items...)
}

// Len returns the number of accumulated items.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Source returns the current page source.
func (l *Loader) Source() PageSource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// LoadNextPage pulls exactly one page and returns its items.
// After exhaustion it returns an empty slice and changes nothing. A failed pull
// leaves the loader untouched so a retry re-issues the same request.
func (l *Loader) LoadNextPage(ctx context.Context) ([]library.Item, error) {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return []library.Item{}, nil
	}
	if l.pulling {
		l.mu.Unlock()
		return nil, ErrPullInFlight
	}
	l.pulling = true
	source, normalize, epoch := l.source, l.normalize, l.epoch
	l.mu.Unlock()

	page, err := source.Next(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if epoch != l.epoch {
		return nil, ErrStalePage
	}
	l.pulling = false

	if err != nil {
		if errors.Is(err, ErrExhausted) {
			l.done = true
			return []library.Item{}, nil
		}
		return nil, err
	}

	items := make([]library.Item, len(page.Records))
	for i, raw := range page.Records {
		items[i] = normalize(raw)
	}
	l.items = append(l.items, items...)
	if page.Done {
		l.done = true
	}

	return items, nil
}

// Reset swaps in a new source and clears accumulated state.
// A pull still running against the previous source will return ErrStalePage.
func (l *Loader) Reset(source PageSource) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.source = source
	l.normalize = library.ForProfile(source.Profile())
	l.items = nil
	l.done = false
	l.pulling = false
	l.epoch++
}
