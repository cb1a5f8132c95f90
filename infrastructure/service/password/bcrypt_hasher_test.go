package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher()

	digest, err := hasher.Hash("field-password-1")
	require.NoError(t, err)
	assert.NotEqual(t, "field-password-1", digest)

	assert.NoError(t, hasher.Compare(digest, "field-password-1"))
	assert.Error(t, hasher.Compare(digest, "wrong-password"))
}

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("field-password-1")
	require.NoError(t, err)
	second, err := hasher.Hash("field-password-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
