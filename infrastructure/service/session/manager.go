package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	domainerror "github.com/agrisync/agrisync/domain/error"
	"github.com/agrisync/agrisync/domain/valueobject"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

const (
	defaultCheckInterval      = 30 * time.Second
	defaultAttentionThreshold = 5 * time.Minute
)

// Manager owns the session lifecycle. It moves the session through
// uninitialized, valid, needs_attention and expired, and it never reports
// expired before the first online check has completed: a stale session on
// a device that has been in the field for a week may still refresh fine.
type Manager struct {
	auth     outbound.AuthProvider
	sessions outbound.SessionStore
	creds    outbound.CredentialStore
	digests  outbound.OfflineDigestStore
	hasher   outbound.PasswordHasher
	logger   logger.Logger

	checkInterval      time.Duration
	attentionThreshold time.Duration
	now                func() time.Time

	mu         sync.RWMutex
	session    *entity.Session
	state      string
	hasChecked bool
	online     bool
	lastError  string

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

type Option func(*Manager)

func WithCheckInterval(d time.Duration) Option {
	return func(m *Manager) { m.checkInterval = d }
}

func WithAttentionThreshold(d time.Duration) Option {
	return func(m *Manager) { m.attentionThreshold = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(
	auth outbound.AuthProvider,
	sessions outbound.SessionStore,
	creds outbound.CredentialStore,
	digests outbound.OfflineDigestStore,
	hasher outbound.PasswordHasher,
	log logger.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		auth:               auth,
		sessions:           sessions,
		creds:              creds,
		digests:            digests,
		hasher:             hasher,
		logger:             log,
		checkInterval:      defaultCheckInterval,
		attentionThreshold: defaultAttentionThreshold,
		now:                time.Now,
		state:              inbound.SessionUninitialized,
		kick:               make(chan struct{}, 1),
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ inbound.SessionService = (*Manager)(nil)

// Initialize loads any persisted session. A stored session that is past
// its expiry is reported as needs_attention, not expired, because the
// backend has not yet had a chance to confirm either way.
func (m *Manager) Initialize(ctx context.Context) error {
	session, err := m.sessions.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, outbound.ErrNoStoredSession) {
			m.setState(nil, inbound.SessionUninitialized, "")
			return nil
		}
		return err
	}

	fillExpiryFromToken(session)

	m.mu.Lock()
	m.session = session
	m.lastError = ""
	if session.IsValid(m.now()) {
		m.state = m.evaluateLocked(session)
	} else {
		m.state = inbound.SessionNeedsAttention
	}
	m.mu.Unlock()

	logger.LogSessionEvent(ctx, m.logger, "initialized", session.User.ID, true, map[string]interface{}{
		"state": m.Status().State,
	})
	return nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*inbound.SessionStatus, error) {
	creds, err := valueobject.NewCredentials(email, password)
	if err != nil {
		return nil, domainerror.ErrInvalidCredentials(err.Error())
	}

	if !m.isOnline() {
		return nil, domainerror.ErrOffline("sign-in")
	}

	session, err := m.auth.SignIn(ctx, creds.Email(), creds.Password())
	if err != nil {
		logger.LogSessionEvent(ctx, m.logger, "sign_in", "", false, nil)
		if errors.Is(err, outbound.ErrAuthUnavailable) {
			return nil, domainerror.ErrOffline("sign-in")
		}
		return nil, domainerror.ErrInvalidCredentials("")
	}

	if err := checkAccountStatus(session.User.Status); err != nil {
		return nil, err
	}

	fillExpiryFromToken(session)

	if err := m.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	if err := m.creds.SaveRecovery(ctx, creds); err != nil {
		m.logger.Warn(ctx, "Failed to store recovery credentials", map[string]interface{}{"user_id": session.User.ID})
	}
	if digest, err := m.hasher.Hash(creds.Password()); err == nil {
		if err := m.digests.SaveOfflineDigest(ctx, creds.Email(), digest); err != nil {
			m.logger.Warn(ctx, "Failed to store offline digest", map[string]interface{}{"user_id": session.User.ID})
		}
	}

	m.mu.Lock()
	m.session = session
	m.hasChecked = true
	m.lastError = ""
	m.state = m.evaluateLocked(session)
	m.mu.Unlock()

	logger.LogSessionEvent(ctx, m.logger, "sign_in", session.User.ID, true, nil)
	status := m.Status()
	return &status, nil
}

// OfflineSignIn lets the previously signed-in user back into local data
// without connectivity by comparing against the stored digest.
func (m *Manager) OfflineSignIn(ctx context.Context, email, password string) (*inbound.SessionStatus, error) {
	storedEmail, digest, err := m.digests.LoadOfflineDigest(ctx)
	if err != nil {
		if errors.Is(err, outbound.ErrNoOfflineDigest) {
			return nil, domainerror.ErrInvalidCredentials("no offline credentials on this device")
		}
		return nil, err
	}

	if !strings.EqualFold(storedEmail, strings.TrimSpace(email)) {
		return nil, domainerror.ErrInvalidCredentials("")
	}
	if err := m.hasher.Compare(digest, password); err != nil {
		logger.LogSessionEvent(ctx, m.logger, "offline_sign_in", "", false, nil)
		return nil, domainerror.ErrInvalidCredentials("")
	}

	session, err := m.sessions.LoadSession(ctx)
	if err != nil && !errors.Is(err, outbound.ErrNoStoredSession) {
		return nil, err
	}

	m.mu.Lock()
	if session != nil {
		fillExpiryFromToken(session)
		m.session = session
		if session.IsValid(m.now()) {
			m.state = m.evaluateLocked(session)
		} else {
			m.state = inbound.SessionNeedsAttention
		}
	} else {
		m.state = inbound.SessionNeedsAttention
	}
	m.lastError = ""
	m.mu.Unlock()

	logger.LogSessionEvent(ctx, m.logger, "offline_sign_in", storedEmail, true, nil)
	status := m.Status()
	return &status, nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	session := m.session
	m.session = nil
	m.state = inbound.SessionUninitialized
	m.hasChecked = false
	m.lastError = ""
	m.mu.Unlock()

	if session != nil && m.isOnline() {
		if err := m.auth.SignOut(ctx, session.AccessToken); err != nil {
			m.logger.Warn(ctx, "Remote sign-out failed", map[string]interface{}{"user_id": session.User.ID})
		}
	}

	if err := m.sessions.ClearSession(ctx); err != nil {
		return err
	}
	if err := m.creds.ClearRecovery(ctx); err != nil {
		return err
	}
	if err := m.digests.ClearOfflineDigest(ctx); err != nil {
		return err
	}

	userID := ""
	if session != nil {
		userID = session.User.ID
	}
	logger.LogSessionEvent(ctx, m.logger, "sign_out", userID, true, nil)
	return nil
}

// RefreshSession exchanges the refresh token for a new session. Only
// attempted while online; offline devices keep whatever they have. A
// rejected refresh gets one recovery attempt with the sealed credentials
// before the session is declared expired.
func (m *Manager) RefreshSession(ctx context.Context) error {
	if !m.isOnline() {
		return domainerror.ErrOffline("refresh")
	}

	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()
	if session == nil {
		return domainerror.ErrSessionExpired("no active session")
	}

	refreshed, err := m.auth.RefreshSession(ctx, session.RefreshToken)
	if err == nil {
		return m.adoptSession(ctx, refreshed, "refresh")
	}

	if errors.Is(err, outbound.ErrAuthUnavailable) {
		// Could not reach the backend; this proves nothing about the
		// session, so the state stays where it is.
		m.setLastError(err.Error())
		return domainerror.ErrRefreshFailed(err)
	}

	logger.LogSessionEvent(ctx, m.logger, "refresh", session.User.ID, false, nil)

	recovered, recoverErr := m.recoverWithCredentials(ctx)
	if recoverErr == nil {
		return m.adoptSession(ctx, recovered, "recovery")
	}

	m.mu.Lock()
	m.hasChecked = true
	m.state = inbound.SessionExpired
	m.lastError = err.Error()
	m.mu.Unlock()

	return domainerror.ErrSessionExpired("refresh rejected and recovery failed")
}

func (m *Manager) recoverWithCredentials(ctx context.Context) (*entity.Session, error) {
	creds, err := m.creds.LoadRecovery(ctx)
	if err != nil {
		return nil, err
	}

	session, err := m.auth.SignIn(ctx, creds.Email(), creds.Password())
	if err != nil {
		return nil, err
	}
	if err := checkAccountStatus(session.User.Status); err != nil {
		return nil, err
	}
	return session, nil
}

func (m *Manager) adoptSession(ctx context.Context, session *entity.Session, via string) error {
	fillExpiryFromToken(session)

	if err := m.sessions.SaveSession(ctx, session); err != nil {
		return err
	}

	m.mu.Lock()
	m.session = session
	m.hasChecked = true
	m.lastError = ""
	m.state = m.evaluateLocked(session)
	m.mu.Unlock()

	logger.LogSessionEvent(ctx, m.logger, via, session.User.ID, true, map[string]interface{}{
		"expires_at": session.ExpiresAt,
	})
	return nil
}

func (m *Manager) Status() inbound.SessionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := inbound.SessionStatus{
		State:      m.state,
		HasChecked: m.hasChecked,
		Online:     m.online,
		LastError:  m.lastError,
	}
	status.IsValid = m.state == inbound.SessionValid || m.state == inbound.SessionNeedsAttention
	status.IsExpired = m.state == inbound.SessionExpired
	status.NeedsAttention = m.state == inbound.SessionNeedsAttention

	if m.session != nil {
		expiresAt := m.session.ExpiresAt
		status.ExpiresAt = &expiresAt
		status.TimeUntilExpiry = m.session.TimeUntilExpiry(m.now())
		user := m.session.User
		status.User = &user
	}
	return status
}

func (m *Manager) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	m.mu.Unlock()

	if online && !wasOnline {
		select {
		case m.kick <- struct{}{}:
		default:
		}
	}
}

func (m *Manager) isOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Start runs the periodic session check until Stop is called or the
// context ends.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.check(ctx)
			case <-m.kick:
				m.check(ctx)
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

// check refreshes when the session is expired or about to expire.
func (m *Manager) check(ctx context.Context) {
	if !m.isOnline() {
		return
	}

	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()
	if session == nil {
		return
	}

	if session.TimeUntilExpiry(m.now()) > m.attentionThreshold {
		m.mu.Lock()
		m.hasChecked = true
		m.state = m.evaluateLocked(session)
		m.mu.Unlock()
		return
	}

	if err := m.RefreshSession(ctx); err != nil {
		m.logger.Debug(ctx, "Periodic session check failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// evaluateLocked derives valid vs needs_attention from the expiry. Caller
// holds m.mu.
func (m *Manager) evaluateLocked(session *entity.Session) string {
	remaining := session.TimeUntilExpiry(m.now())
	if remaining <= 0 {
		if !m.hasChecked {
			return inbound.SessionNeedsAttention
		}
		return inbound.SessionExpired
	}
	if remaining <= m.attentionThreshold {
		return inbound.SessionNeedsAttention
	}
	return inbound.SessionValid
}

func (m *Manager) setState(session *entity.Session, state, lastError string) {
	m.mu.Lock()
	m.session = session
	m.state = state
	m.lastError = lastError
	m.mu.Unlock()
}

func (m *Manager) setLastError(message string) {
	m.mu.Lock()
	m.lastError = message
	m.mu.Unlock()
}

func checkAccountStatus(status string) error {
	switch status {
	case entity.UserStatusBlocked:
		return domainerror.ErrAccountStatus(domainerror.ErrCodeAccountBlocked, status)
	case entity.UserStatusBanned:
		return domainerror.ErrAccountStatus(domainerror.ErrCodeAccountBanned, status)
	case entity.UserStatusPendingVerification:
		return domainerror.ErrAccountStatus(domainerror.ErrCodeEmailNotVerified, status)
	case entity.UserStatusUnauthorized:
		return domainerror.ErrAccountStatus(domainerror.ErrCodeNotAuthorized, status)
	}
	return nil
}

// fillExpiryFromToken backfills ExpiresAt from the access token's exp
// claim when the auth response did not carry an expiry.
func fillExpiryFromToken(session *entity.Session) {
	if session == nil || !session.ExpiresAt.IsZero() || session.AccessToken == "" {
		return
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(session.AccessToken, claims); err != nil {
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time.UTC()
	}
}
