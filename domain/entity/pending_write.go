package entity

import (
	"encoding/json"
	"time"
)

// Remote mutation kinds carried by a pending write.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// PendingWrite is one not-yet-acknowledged remote mutation. The payload is a
// snapshot of the entity at enqueue time and is never mutated afterwards, so
// replaying it is always safe against an idempotent remote upsert.
type PendingWrite struct {
	Seq        int64           `json:"seq"`
	Operation  string          `json:"operation"`
	TableName  string          `json:"table_name"`
	Payload    json.RawMessage `json:"payload"`
	RetryCount int             `json:"retry_count"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewPendingWrite snapshots an entity into a queue item. The seq is assigned
// by the store on enqueue.
func NewPendingWrite(operation, tableName string, payload json.RawMessage) *PendingWrite {
	return &PendingWrite{
		Operation:  operation,
		TableName:  tableName,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
}

func ValidOperation(op string) bool {
	switch op {
	case OpInsert, OpUpdate, OpUpsert, OpDelete:
		return true
	}
	return false
}
