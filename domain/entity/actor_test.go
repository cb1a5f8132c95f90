package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActor(t *testing.T) {
	actor := NewActor(CategoryCooperative, "  Coop Nampula  ", "user-1")

	assert.NotEmpty(t, actor.ID)
	assert.Equal(t, "Coop Nampula", actor.Name)
	assert.Equal(t, "user-1", actor.OwnerID)
	assert.False(t, actor.CreatedAt.IsZero())
	assert.Equal(t, actor.CreatedAt, actor.UpdatedAt)
}

func TestActor_IsOrganization(t *testing.T) {
	assert.True(t, NewActor(CategoryCooperative, "a", "u").IsOrganization())
	assert.True(t, NewActor(CategoryAssociation, "a", "u").IsOrganization())
	assert.True(t, NewActor(CategoryUnion, "a", "u").IsOrganization())
	assert.False(t, NewActor(CategoryFarmer, "a", "u").IsOrganization())
	assert.False(t, NewActor(CategoryGroup, "a", "u").IsOrganization())
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{CategoryFarmer, CategoryGroup, CategoryCooperative, CategoryAssociation, CategoryUnion} {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory("shop"))
	assert.False(t, ValidCategory(""))
}

func TestNewActorDetail_TrimsIdentifiers(t *testing.T) {
	detail := NewActorDetail("actor-1", " 123456789 ", " 555001 ", "100000001", 10)

	assert.Equal(t, "123456789", detail.Nuit)
	assert.Equal(t, "555001", detail.Nuel)
}

func TestNewOrganizationTransaction_ComputesTotal(t *testing.T) {
	txn := NewOrganizationTransaction("s", "b", "cashew", 250, 45.5, 2026, time.Time{})

	assert.InDelta(t, 11375, txn.TotalAmount, 0.001)
	assert.False(t, txn.TradedAt.IsZero())
}

func TestNewOrganizationTransaction_KeepsExplicitTradeTime(t *testing.T) {
	when := time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC)
	txn := NewOrganizationTransaction("s", "b", "cashew", 10, 1, 2026, when)

	assert.Equal(t, when, txn.TradedAt)
}

func TestValidOperation(t *testing.T) {
	for _, op := range []string{OpInsert, OpUpdate, OpUpsert, OpDelete} {
		assert.True(t, ValidOperation(op))
	}
	assert.False(t, ValidOperation("merge"))
}

func TestSession_Validity(t *testing.T) {
	now := time.Now()
	session := &Session{
		AccessToken: "token",
		ExpiresAt:   now.Add(time.Hour),
	}

	require.True(t, session.IsValid(now))
	assert.Equal(t, time.Hour, session.TimeUntilExpiry(now))
	assert.False(t, session.IsValid(now.Add(2*time.Hour)))

	empty := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, empty.IsValid(now))
}
