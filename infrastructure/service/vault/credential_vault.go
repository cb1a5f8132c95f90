package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/valueobject"
)

const recoveryKey = "recovery_credentials"

// scrypt parameters, interactive-login strength.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

type kvStore interface {
	PutKV(ctx context.Context, key string, value []byte) error
	GetKV(ctx context.Context, key string) ([]byte, error)
	DeleteKV(ctx context.Context, key string) error
}

// CredentialVault seals recovery credentials at rest. The key is derived
// per entry from the configured secret and a fresh salt via scrypt, and
// the plaintext is sealed with ChaCha20-Poly1305 so a copied database
// file alone is not enough to read the credentials back.
type CredentialVault struct {
	store  kvStore
	secret []byte
}

func NewCredentialVault(store kvStore, secret string) (*CredentialVault, error) {
	if secret == "" {
		return nil, fmt.Errorf("vault secret must not be empty")
	}
	return &CredentialVault{store: store, secret: []byte(secret)}, nil
}

var _ outbound.CredentialStore = (*CredentialVault)(nil)

type sealedEntry struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type credentialPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (v *CredentialVault) SaveRecovery(ctx context.Context, creds *valueobject.Credentials) error {
	plaintext, err := json.Marshal(credentialPayload{
		Email:    creds.Email(),
		Password: creds.Password(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	blob, err := v.seal(plaintext)
	if err != nil {
		return err
	}

	if err := v.store.PutKV(ctx, recoveryKey, blob); err != nil {
		return fmt.Errorf("failed to persist recovery credentials: %w", err)
	}
	return nil
}

func (v *CredentialVault) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := v.deriveAEAD(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	entry := sealedEntry{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}

	blob, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sealed entry: %w", err)
	}
	return blob, nil
}

func (v *CredentialVault) open(blob []byte) ([]byte, error) {
	var entry sealedEntry
	if err := json.Unmarshal(blob, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode sealed entry: %w", err)
	}

	aead, err := v.deriveAEAD(entry.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, entry.Nonce, entry.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal vault entry: %w", err)
	}
	return plaintext, nil
}

func (v *CredentialVault) LoadRecovery(ctx context.Context) (*valueobject.Credentials, error) {
	blob, err := v.store.GetKV(ctx, recoveryKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrNoRecoveryCredentials
		}
		return nil, fmt.Errorf("failed to load recovery credentials: %w", err)
	}

	plaintext, err := v.open(blob)
	if err != nil {
		return nil, err
	}

	var payload credentialPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}

	creds, err := valueobject.NewCredentials(payload.Email, payload.Password)
	if err != nil {
		return nil, fmt.Errorf("stored credentials are invalid: %w", err)
	}
	return creds, nil
}

func (v *CredentialVault) ClearRecovery(ctx context.Context) error {
	if err := v.store.DeleteKV(ctx, recoveryKey); err != nil {
		return fmt.Errorf("failed to clear recovery credentials: %w", err)
	}
	return nil
}

func (v *CredentialVault) deriveAEAD(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(v.secret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return aead, nil
}
