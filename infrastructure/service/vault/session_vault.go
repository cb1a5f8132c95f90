package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

const (
	sessionKey       = "session"
	offlineDigestKey = "offline_digest"
)

// The vault doubles as the session store: the persisted session carries
// the refresh token, which deserves the same sealing as credentials.

var (
	_ outbound.SessionStore       = (*CredentialVault)(nil)
	_ outbound.OfflineDigestStore = (*CredentialVault)(nil)
)

func (v *CredentialVault) SaveSession(ctx context.Context, session *entity.Session) error {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	blob, err := v.seal(plaintext)
	if err != nil {
		return err
	}

	if err := v.store.PutKV(ctx, sessionKey, blob); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (v *CredentialVault) LoadSession(ctx context.Context) (*entity.Session, error) {
	blob, err := v.store.GetKV(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrNoStoredSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	plaintext, err := v.open(blob)
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(plaintext, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (v *CredentialVault) ClearSession(ctx context.Context) error {
	if err := v.store.DeleteKV(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

type offlineDigestPayload struct {
	Email  string `json:"email"`
	Digest string `json:"digest"`
}

// The digest is already one-way (bcrypt) but is sealed anyway so the
// vault table holds a single kind of content.

func (v *CredentialVault) SaveOfflineDigest(ctx context.Context, email, digest string) error {
	plaintext, err := json.Marshal(offlineDigestPayload{Email: email, Digest: digest})
	if err != nil {
		return fmt.Errorf("failed to encode offline digest: %w", err)
	}

	blob, err := v.seal(plaintext)
	if err != nil {
		return err
	}

	if err := v.store.PutKV(ctx, offlineDigestKey, blob); err != nil {
		return fmt.Errorf("failed to persist offline digest: %w", err)
	}
	return nil
}

func (v *CredentialVault) LoadOfflineDigest(ctx context.Context) (string, string, error) {
	blob, err := v.store.GetKV(ctx, offlineDigestKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", outbound.ErrNoOfflineDigest
		}
		return "", "", fmt.Errorf("failed to load offline digest: %w", err)
	}

	plaintext, err := v.open(blob)
	if err != nil {
		return "", "", err
	}

	var payload offlineDigestPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return "", "", fmt.Errorf("failed to decode offline digest: %w", err)
	}
	return payload.Email, payload.Digest, nil
}

func (v *CredentialVault) ClearOfflineDigest(ctx context.Context) error {
	if err := v.store.DeleteKV(ctx, offlineDigestKey); err != nil {
		return fmt.Errorf("failed to clear offline digest: %w", err)
	}
	return nil
}
