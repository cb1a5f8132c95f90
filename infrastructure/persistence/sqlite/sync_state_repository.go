package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agrisync/agrisync/application/port/outbound"
)

type syncStateRepository struct {
	store *Store
}

func NewSyncStateRepository(store *Store) outbound.SyncStateRepository {
	return &syncStateRepository{store: store}
}

func (r *syncStateRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := r.store.db.QueryRowContext(ctx, `SELECT last_synced_at FROM sync_state WHERE id = 1`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time.UTC()
	return &t, nil
}

func (r *syncStateRepository) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	if _, err := r.store.db.ExecContext(ctx, `UPDATE sync_state SET last_synced_at = ? WHERE id = 1`, t.UTC()); err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}
