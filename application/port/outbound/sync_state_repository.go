package outbound

import (
	"context"
	"time"
)

// SyncStateRepository persists the last successful sync attempt timestamp.
// Everything else about sync status is recomputed from the pending-write
// table on demand.
type SyncStateRepository interface {
	LastSyncedAt(ctx context.Context) (*time.Time, error)
	SetLastSyncedAt(ctx context.Context, t time.Time) error
}
