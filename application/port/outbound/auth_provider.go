package outbound

import (
	"context"
	"errors"

	"github.com/agrisync/agrisync/domain/entity"
)

var (
	ErrAuthRejected    = errors.New("authentication rejected")
	ErrAuthUnavailable = errors.New("auth backend unavailable")
)

// AuthProvider is the client contract against the hosted auth backend.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}
