package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doclib/database"
	"doclib/domain/contracts"
	"doclib/domain/library"
)

// FieldCacheRepository stores list view column metadata in SQLite with a freshness window.
type FieldCacheRepository struct {
	*BaseRepository
	ttl time.Duration
	now func() time.Time
}

var _ contracts.FieldCacheRepository = (*FieldCacheRepository)(nil)

// NewFieldCacheRepository creates a field cache. Entries older than ttl read as misses.
func NewFieldCacheRepository(db *database.Database, ttl time.Duration) *FieldCacheRepository {
	return &FieldCacheRepository{
		BaseRepository: NewBaseRepository(db),
		ttl:            ttl,
		now:            time.Now,
	}
}

// Get returns cached fields when an unexpired entry exists.
func (r *FieldCacheRepository) Get(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, bool, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := r.ReadDB().QueryRowContext(ctx,
		`SELECT fields_json, fetched_at FROM field_cache WHERE list_title = ? AND view_name = ?`,
		listTitle, viewName,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query field cache: %w", err)
	}

	if r.ttl > 0 && r.now().Sub(time.UnixMilli(fetchedAt)) > r.ttl {
		return nil, false, nil
	}

	var fields []library.FieldDescriptor
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, false, ErrCorruptCacheEntry{ListTitle: listTitle, ViewName: viewName, Err: err}
	}
	return fields, true, nil
}

// Save replaces the entry for a list view.
func (r *FieldCacheRepository) Save(ctx context.Context, listTitle, viewName string, fields []library.FieldDescriptor) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	_, err = r.WriteDB().ExecContext(ctx,
		`INSERT INTO field_cache (list_title, view_name, fields_json, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (list_title, view_name) DO UPDATE SET fields_json = excluded.fields_json, fetched_at = excluded.fetched_at`,
		listTitle, viewName, string(payload), r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save field cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached view of a list.
func (r *FieldCacheRepository) Invalidate(ctx context.Context, listTitle string) error {
	if _, err := r.WriteDB().ExecContext(ctx, `DELETE FROM field_cache WHERE list_title = ?`, listTitle); err != nil {
		return fmt.Errorf("invalidate field cache: %w", err)
	}
	return nil
}

// PurgeExpired deletes entries past the TTL and returns how many were removed.
func (r *FieldCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-r.ttl).UnixMilli()

	var removed int64
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM field_cache WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge field cache: %w", err)
	}
	return removed, nil
}
