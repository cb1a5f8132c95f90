package entity

import "time"

// Account statuses pushed by the auth backend in user_metadata.status.
// These values are a hard external contract and gate what the app allows.
const (
	UserStatusUnauthorized        = "unauthorized"
	UserStatusAuthorized          = "authorized"
	UserStatusBlocked             = "blocked"
	UserStatusBanned              = "banned"
	UserStatusPendingVerification = "pending_email_verification"
)

type SessionUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Session is the authenticated identity as issued by the auth backend.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

func (s *Session) TimeUntilExpiry(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

func (s *Session) IsValid(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}
