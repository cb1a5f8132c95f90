package inbound

import (
	"context"

	"github.com/agrisync/agrisync/domain/entity"
)

// SyncService drains the pending-write queue against the remote backend.
type SyncService interface {
	// SyncNow runs one drain pass. A call while a pass is already running
	// is a silent no-op.
	SyncNow(ctx context.Context) error
	Status(ctx context.Context) entity.SyncStatus
	// NotifyBackendConnected signals that the sync backend reported itself
	// reachable; triggers a pass when work is pending.
	NotifyBackendConnected()
	// RequestSync asks for a pass without blocking the caller. Used after a
	// local commit so queued writes leave the device as soon as possible.
	RequestSync()
	// SubscribeStatus delivers a status snapshot after every sync pass.
	SubscribeStatus() <-chan entity.SyncStatus
}
