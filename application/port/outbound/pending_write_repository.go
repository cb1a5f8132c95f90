package outbound

import (
	"context"

	"github.com/agrisync/agrisync/domain/entity"
)

// PendingWriteRepository is the durable write-ahead log for remote
// mutations. Entries survive process restarts and are removed only after a
// confirmed remote success.
type PendingWriteRepository interface {
	Enqueue(ctx context.Context, write *entity.PendingWrite) error
	// ListPending returns queued writes in enqueue order (FIFO per table
	// follows from global FIFO).
	ListPending(ctx context.Context) ([]*entity.PendingWrite, error)
	Remove(ctx context.Context, seq int64) error
	IncrementRetry(ctx context.Context, seq int64) error
	Count(ctx context.Context) (int, error)
}
