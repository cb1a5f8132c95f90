package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

const pendingWritesTable = "pending_writes"

type pendingWriteRepository struct {
	store *Store
}

func NewPendingWriteRepository(store *Store) outbound.PendingWriteRepository {
	return &pendingWriteRepository{store: store}
}

func insertPendingWriteTx(ctx context.Context, tx *sql.Tx, w *entity.PendingWrite) error {
	query := `
		INSERT INTO pending_writes (operation, table_name, payload, retry_count, enqueued_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, query, w.Operation, w.TableName, string(w.Payload), w.RetryCount, w.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue pending write: %w", err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		w.Seq = seq
	}
	return nil
}

func (r *pendingWriteRepository) Enqueue(ctx context.Context, write *entity.PendingWrite) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		return insertPendingWriteTx(ctx, tx, write)
	})
	if err != nil {
		return err
	}
	r.store.notifier.Notify(pendingWritesTable)
	return nil
}

func (r *pendingWriteRepository) ListPending(ctx context.Context) ([]*entity.PendingWrite, error) {
	query := `
		SELECT seq, operation, table_name, payload, retry_count, enqueued_at
		FROM pending_writes
		ORDER BY seq ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending writes: %w", err)
	}
	defer rows.Close()

	var writes []*entity.PendingWrite
	for rows.Next() {
		var w entity.PendingWrite
		var payload string
		if err := rows.Scan(&w.Seq, &w.Operation, &w.TableName, &payload, &w.RetryCount, &w.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending write: %w", err)
		}
		w.Payload = []byte(payload)
		writes = append(writes, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending writes: %w", err)
	}

	return writes, nil
}

func (r *pendingWriteRepository) Remove(ctx context.Context, seq int64) error {
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to remove pending write: %w", err)
	}
	r.store.notifier.Notify(pendingWritesTable)
	return nil
}

func (r *pendingWriteRepository) IncrementRetry(ctx context.Context, seq int64) error {
	if _, err := r.store.db.ExecContext(ctx, `UPDATE pending_writes SET retry_count = retry_count + 1 WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}
	return nil
}

func (r *pendingWriteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_writes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending writes: %w", err)
	}
	return count, nil
}
