package entity

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID             string    `json:"id"`
	SyncID         string    `json:"sync_id,omitempty"`
	ActorID        string    `json:"actor_id"`
	PrimaryPhone   string    `json:"primary_phone"`
	SecondaryPhone string    `json:"secondary_phone"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewContact(actorID, primaryPhone, secondaryPhone, email string) *Contact {
	now := time.Now().UTC()
	return &Contact{
		ID:             uuid.New().String(),
		ActorID:        actorID,
		PrimaryPhone:   primaryPhone,
		SecondaryPhone: secondaryPhone,
		Email:          email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
