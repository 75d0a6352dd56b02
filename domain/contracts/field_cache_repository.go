package contracts

import (
	"context"

	"doclib/domain/library"
)

// FieldCacheRepository stores field metadata per list and view.
type FieldCacheRepository interface {
	// Get returns cached fields; found is false on a miss or an expired entry.
	Get(ctx context.Context, listTitle, viewName string) (fields []library.FieldDescriptor, found bool, err error)
	Save(ctx context.Context, listTitle, viewName string, fields []library.FieldDescriptor) error
	Invalidate(ctx context.Context, listTitle string) error
}
