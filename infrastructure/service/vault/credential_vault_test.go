package vault

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/valueobject"
)

type memoryKV struct {
	entries map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{entries: make(map[string][]byte)}
}

func (m *memoryKV) PutKV(_ context.Context, key string, value []byte) error {
	m.entries[key] = value
	return nil
}

func (m *memoryKV) GetKV(_ context.Context, key string) ([]byte, error) {
	value, ok := m.entries[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return value, nil
}

func (m *memoryKV) DeleteKV(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func TestCredentialVault_RoundTrip(t *testing.T) {
	kv := newMemoryKV()
	v, err := NewCredentialVault(kv, "unit-test-secret")
	require.NoError(t, err)

	creds, err := valueobject.NewCredentials("agent@coop.co.mz", "field-password-1")
	require.NoError(t, err)

	require.NoError(t, v.SaveRecovery(context.Background(), creds))

	loaded, err := v.LoadRecovery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "agent@coop.co.mz", loaded.Email())
	assert.Equal(t, "field-password-1", loaded.Password())
}

func TestCredentialVault_CiphertextIsNotPlaintext(t *testing.T) {
	kv := newMemoryKV()
	v, err := NewCredentialVault(kv, "unit-test-secret")
	require.NoError(t, err)

	creds, err := valueobject.NewCredentials("agent@coop.co.mz", "field-password-1")
	require.NoError(t, err)
	require.NoError(t, v.SaveRecovery(context.Background(), creds))

	stored := string(kv.entries[recoveryKey])
	assert.NotContains(t, stored, "field-password-1")
	assert.NotContains(t, stored, "agent@coop.co.mz")
}

func TestCredentialVault_WrongSecretFailsToUnseal(t *testing.T) {
	kv := newMemoryKV()
	v1, err := NewCredentialVault(kv, "secret-one")
	require.NoError(t, err)

	creds, err := valueobject.NewCredentials("agent@coop.co.mz", "field-password-1")
	require.NoError(t, err)
	require.NoError(t, v1.SaveRecovery(context.Background(), creds))

	v2, err := NewCredentialVault(kv, "secret-two")
	require.NoError(t, err)

	_, err = v2.LoadRecovery(context.Background())
	assert.Error(t, err)
}

func TestCredentialVault_LoadWithoutSave(t *testing.T) {
	v, err := NewCredentialVault(newMemoryKV(), "unit-test-secret")
	require.NoError(t, err)

	_, err = v.LoadRecovery(context.Background())
	assert.ErrorIs(t, err, outbound.ErrNoRecoveryCredentials)
}

func TestCredentialVault_ClearRemovesEntry(t *testing.T) {
	kv := newMemoryKV()
	v, err := NewCredentialVault(kv, "unit-test-secret")
	require.NoError(t, err)

	creds, err := valueobject.NewCredentials("agent@coop.co.mz", "field-password-1")
	require.NoError(t, err)
	require.NoError(t, v.SaveRecovery(context.Background(), creds))
	require.NoError(t, v.ClearRecovery(context.Background()))

	_, err = v.LoadRecovery(context.Background())
	assert.ErrorIs(t, err, outbound.ErrNoRecoveryCredentials)
}

func TestNewCredentialVault_EmptySecret(t *testing.T) {
	_, err := NewCredentialVault(newMemoryKV(), "")
	assert.Error(t, err)
}
