package middleware

import (
	"net/http"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/infrastructure/http/response"
)

// SessionGuard protects data routes behind the device session. An expired
// session blocks writes, but a session that merely needs attention still
// passes: field work must not stop because a refresh is overdue.
type SessionGuard struct {
	sessions inbound.SessionService
}

func NewSessionGuard(sessions inbound.SessionService) *SessionGuard {
	return &SessionGuard{sessions: sessions}
}

func (g *SessionGuard) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := g.sessions.Status()

		if status.State == inbound.SessionUninitialized {
			response.Unauthorized(w, "Sign in required")
			return
		}
		if status.IsExpired {
			response.Unauthorized(w, "Session has expired")
			return
		}

		next.ServeHTTP(w, r)
	}
}
