package entity

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID                 string    `json:"id"`
	SyncID             string    `json:"sync_id,omitempty"`
	ActorID            string    `json:"actor_id"`
	Province           string    `json:"province"`
	District           string    `json:"district"`
	AdministrativePost string    `json:"administrative_post"`
	Locality           string    `json:"locality"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewAddress(actorID, province, district, adminPost, locality string) *Address {
	now := time.Now().UTC()
	return &Address{
		ID:                 uuid.New().String(),
		ActorID:            actorID,
		Province:           province,
		District:           district,
		AdministrativePost: adminPost,
		Locality:           locality,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
