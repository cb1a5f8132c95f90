package outbound

import (
	"context"
	"errors"

	"github.com/agrisync/agrisync/domain/entity"
)

var ErrNoStoredSession = errors.New("no stored session")

// SessionStore persists the authenticated session across restarts so the
// app can come up signed-in while offline.
type SessionStore interface {
	SaveSession(ctx context.Context, session *entity.Session) error
	LoadSession(ctx context.Context) (*entity.Session, error)
	ClearSession(ctx context.Context) error
}
