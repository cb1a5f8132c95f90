package entity

import "time"

// SyncStatus is the process-wide view of the sync engine. Only LastSyncedAt
// is persisted; the rest is recomputed from the pending-write table, which
// stays the single source of truth for outstanding work.
type SyncStatus struct {
	Connected    bool       `json:"connected"`
	Syncing      bool       `json:"syncing"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	PendingCount int        `json:"pending_count"`
}
