package repositories

import "fmt"

// ErrCorruptCacheEntry occurs when a stored field cache row cannot be decoded
type ErrCorruptCacheEntry struct {
	ListTitle string
	ViewName  string
	Err       error
}

func (e ErrCorruptCacheEntry) Error() string {
	return fmt.Sprintf("corrupt field cache entry for list %q view %q: %v", e.ListTitle, e.ViewName, e.Err)
}

func (e ErrCorruptCacheEntry) Unwrap() error {
	return e.Err
}
