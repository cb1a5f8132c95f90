package outbound

import (
	"context"
	"encoding/json"
)

// RemoteSyncAPI is the client contract against the remote sync backend.
// Every call is a single HTTP request; success is strictly HTTP 200. Errors
// distinguish transport failures from server rejections through their
// message prefix so the sync engine can log them apart.
type RemoteSyncAPI interface {
	Update(ctx context.Context, table string, data json.RawMessage) error
	Upsert(ctx context.Context, table string, data json.RawMessage) error
	Delete(ctx context.Context, table string, data json.RawMessage) error
}
