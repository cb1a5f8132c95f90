package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

const (
	defaultSyncInterval       = 30 * time.Second
	defaultRetryWarnThreshold = 5
)

// Engine drains the pending-write queue against the remote backend. One
// pass at a time: a SyncNow while a pass is running is a silent no-op,
// enforced with a compare-and-swap rather than a lock so callers never
// block behind a slow pass.
type Engine struct {
	queue        outbound.PendingWriteRepository
	remote       outbound.RemoteSyncAPI
	syncState    outbound.SyncStateRepository
	connectivity outbound.ConnectivityMonitor
	logger       logger.Logger

	interval           time.Duration
	retryWarnThreshold int
	syncing            atomic.Bool

	mu           sync.RWMutex
	lastSyncedAt *time.Time
	subs         []chan entity.SyncStatus

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithRetryWarnThreshold sets how many failed attempts a pending write
// accumulates before the engine starts warning about it.
func WithRetryWarnThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.retryWarnThreshold = n
		}
	}
}

func NewEngine(
	queue outbound.PendingWriteRepository,
	remote outbound.RemoteSyncAPI,
	syncState outbound.SyncStateRepository,
	connectivity outbound.ConnectivityMonitor,
	log logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		queue:              queue,
		remote:             remote,
		syncState:          syncState,
		connectivity:       connectivity,
		logger:             log,
		interval:           defaultSyncInterval,
		retryWarnThreshold: defaultRetryWarnThreshold,
		kick:               make(chan struct{}, 1),
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ inbound.SyncService = (*Engine)(nil)

// SyncNow runs one drain pass. Items are applied strictly in enqueue
// order; a failed item stays queued with its retry count bumped and the
// pass moves on, so one poisoned write cannot dam the whole queue.
func (e *Engine) SyncNow(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	if !e.connectivity.Online() {
		return nil
	}

	start := time.Now()
	writes, err := e.queue.ListPending(ctx)
	if err != nil {
		e.logger.Error(ctx, "Failed to list pending writes", err, nil)
		return err
	}

	applied, failed := 0, 0
	for _, write := range writes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.apply(ctx, write); err != nil {
			failed++
			if err := e.queue.IncrementRetry(ctx, write.Seq); err != nil {
				e.logger.Error(ctx, "Failed to record retry", err, map[string]interface{}{
					"seq": write.Seq,
				})
			}
			logger.LogSyncEvent(ctx, e.logger, "item_failed", false, map[string]interface{}{
				"seq":       write.Seq,
				"table":     write.TableName,
				"operation": write.Operation,
				"retries":   write.RetryCount + 1,
				"error":     err.Error(),
			})
			if write.RetryCount+1 >= e.retryWarnThreshold {
				e.logger.Warn(ctx, "Pending write keeps failing", map[string]interface{}{
					"seq":     write.Seq,
					"table":   write.TableName,
					"retries": write.RetryCount + 1,
				})
			}
			continue
		}

		if err := e.queue.Remove(ctx, write.Seq); err != nil {
			// The remote accepted the write; leaving it queued means a
			// replay against the idempotent upsert, which is safe.
			e.logger.Error(ctx, "Failed to dequeue applied write", err, map[string]interface{}{
				"seq": write.Seq,
			})
			continue
		}
		applied++
	}

	// The pass timestamp records the attempt, not a fully clean drain.
	now := time.Now().UTC()
	if err := e.syncState.SetLastSyncedAt(ctx, now); err != nil {
		e.logger.Error(ctx, "Failed to record sync time", err, nil)
	}
	e.mu.Lock()
	e.lastSyncedAt = &now
	e.mu.Unlock()

	logger.LogSyncEvent(ctx, e.logger, "pass_completed", failed == 0, map[string]interface{}{
		"applied": applied,
		"failed":  failed,
	})
	logger.LogPerformance(ctx, e.logger, "sync_pass", time.Since(start), nil)

	e.publishStatus(ctx)
	return nil
}

func (e *Engine) apply(ctx context.Context, write *entity.PendingWrite) error {
	switch write.Operation {
	case entity.OpInsert, entity.OpUpsert:
		// Inserts go through upsert so a replay after a lost ack cannot
		// create a duplicate remotely.
		return e.remote.Upsert(ctx, write.TableName, write.Payload)
	case entity.OpUpdate:
		return e.remote.Update(ctx, write.TableName, write.Payload)
	case entity.OpDelete:
		return e.remote.Delete(ctx, write.TableName, write.Payload)
	default:
		// Unknown operations are removed rather than retried forever.
		e.logger.Warn(ctx, "Dropping pending write with unknown operation", map[string]interface{}{
			"seq":       write.Seq,
			"operation": write.Operation,
		})
		return nil
	}
}

func (e *Engine) Status(ctx context.Context) entity.SyncStatus {
	count, err := e.queue.Count(ctx)
	if err != nil {
		e.logger.Error(ctx, "Failed to count pending writes", err, nil)
	}

	e.mu.RLock()
	last := e.lastSyncedAt
	e.mu.RUnlock()

	if last == nil {
		if stored, err := e.syncState.LastSyncedAt(ctx); err == nil && stored != nil {
			e.mu.Lock()
			e.lastSyncedAt = stored
			e.mu.Unlock()
			last = stored
		}
	}

	return entity.SyncStatus{
		Connected:    e.connectivity.Online(),
		Syncing:      e.syncing.Load(),
		LastSyncedAt: last,
		PendingCount: count,
	}
}

func (e *Engine) NotifyBackendConnected() {
	e.RequestSync()
}

func (e *Engine) RequestSync() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) SubscribeStatus() <-chan entity.SyncStatus {
	ch := make(chan entity.SyncStatus, 1)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) publishStatus(ctx context.Context) {
	status := e.Status(ctx)

	e.mu.RLock()
	subs := make([]chan entity.SyncStatus, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- status:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- status:
			default:
			}
		}
	}
}

// Start runs the periodic drain and listens for the two event triggers:
// the connectivity offline-to-online transition and the backend-connected
// signal.
func (e *Engine) Start(ctx context.Context) {
	online := e.connectivity.Subscribe()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stop:
				return
			case <-ticker.C:
				e.runPass(ctx)
			case isOnline := <-online:
				if isOnline {
					e.runPass(ctx)
				} else {
					e.publishStatus(ctx)
				}
			case <-e.kick:
				e.runPass(ctx)
			}
		}
	}()
}

func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

func (e *Engine) runPass(ctx context.Context) {
	if err := e.SyncNow(ctx); err != nil {
		e.logger.Error(ctx, "Sync pass failed", err, nil)
	}
}
