package entity

import (
	"time"

	"github.com/google/uuid"
)

type Warehouse struct {
	ID          string    `json:"id"`
	SyncID      string    `json:"sync_id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	CapacityKg  float64   `json:"capacity_kg"`
	Province    string    `json:"province"`
	District    string    `json:"district"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewWarehouse(ownerID, name string, capacityKg float64, province, district string) *Warehouse {
	now := time.Now().UTC()
	return &Warehouse{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Name:       name,
		CapacityKg: capacityKg,
		Province:   province,
		District:   district,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
