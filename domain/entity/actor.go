package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actor categories. Farmers and informal groups are individual records,
// the remaining categories are legal organizations subject to the
// duplicate identifier check.
const (
	CategoryFarmer      = "farmer"
	CategoryGroup       = "group"
	CategoryCooperative = "cooperative"
	CategoryAssociation = "association"
	CategoryUnion       = "coop_union"
)

// Remote table names used by the sync protocol.
const (
	TableActors                   = "actors"
	TableActorDetails             = "actor_details"
	TableAddresses                = "addresses"
	TableContacts                 = "contacts"
	TableGroupManagers            = "group_managers"
	TableWarehouses               = "warehouses"
	TableOrganizationTransactions = "organization_transactions"
)

type Actor struct {
	ID        string    `json:"id"`
	SyncID    string    `json:"sync_id,omitempty"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewActor builds a fully populated actor row from user-supplied fields.
// The id is generated client-side so records can be created fully offline.
func NewActor(category, name, ownerID string) *Actor {
	now := time.Now().UTC()
	return &Actor{
		ID:        uuid.New().String(),
		Category:  category,
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOrganization reports whether the actor is a legal organization,
// i.e. one that must carry unique NUIT/NUEL identifiers.
func (a *Actor) IsOrganization() bool {
	switch a.Category {
	case CategoryCooperative, CategoryAssociation, CategoryUnion:
		return true
	}
	return false
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryFarmer, CategoryGroup, CategoryCooperative, CategoryAssociation, CategoryUnion:
		return true
	}
	return false
}
