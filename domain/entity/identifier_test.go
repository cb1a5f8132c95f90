package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLicenseNumber_AlwaysNineDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		license := DeriveLicenseNumber("user-1")
		require.Len(t, license, 9)
		assert.NotEqual(t, byte('0'), license[0], "license must not have a leading zero")
		for _, r := range license {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

// The license space is only 9e8 values, so a large draw count would hit
// the birthday bound; a small sample keeps the distinctness check
// deterministic in practice.
func TestDeriveLicenseNumber_ConsecutiveDrawsDiffer(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		seen[DeriveLicenseNumber("user-1")] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

// Record ids must never collide, no matter how many registrations one
// device produces.
func TestNewActor_UniqueIDs(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		actor := NewActor(CategoryFarmer, "Amélia Macamo", "user-1")
		_, dup := seen[actor.ID]
		require.False(t, dup, "duplicate actor id %s after %d registrations", actor.ID, i)
		seen[actor.ID] = struct{}{}
	}
}
