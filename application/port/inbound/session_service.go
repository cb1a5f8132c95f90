package inbound

import (
	"context"
	"time"

	"github.com/agrisync/agrisync/domain/entity"
)

// Session lifecycle states reported by the session service.
const (
	SessionUninitialized  = "uninitialized"
	SessionValid          = "valid"
	SessionNeedsAttention = "needs_attention"
	SessionExpired        = "expired"
)

type SessionStatus struct {
	State           string              `json:"state"`
	IsValid         bool                `json:"is_valid"`
	IsExpired       bool                `json:"is_expired"`
	NeedsAttention  bool                `json:"needs_attention"`
	HasChecked      bool                `json:"has_checked"`
	Online          bool                `json:"online"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	TimeUntilExpiry time.Duration       `json:"time_until_expiry"`
	User            *entity.SessionUser `json:"user,omitempty"`
	LastError       string              `json:"last_error,omitempty"`
}

type SessionService interface {
	// Initialize loads any persisted session and computes the first status.
	Initialize(ctx context.Context) error
	SignIn(ctx context.Context, email, password string) (*SessionStatus, error)
	// OfflineSignIn verifies the user against the stored offline digest so
	// the local data stays reachable without connectivity.
	OfflineSignIn(ctx context.Context, email, password string) (*SessionStatus, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) error
	Status() SessionStatus
	// SetOnline is pushed in from connectivity observation; refresh is only
	// attempted while online.
	SetOnline(online bool)
}
