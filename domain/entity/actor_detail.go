package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActorDetail struct {
	ID            string    `json:"id"`
	SyncID        string    `json:"sync_id,omitempty"`
	ActorID       string    `json:"actor_id"`
	Nuit          string    `json:"nuit"`
	Nuel          string    `json:"nuel"`
	LicenseNumber string    `json:"license_number"`
	MemberCount   int       `json:"member_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewActorDetail(actorID, nuit, nuel, licenseNumber string, memberCount int) *ActorDetail {
	now := time.Now().UTC()
	return &ActorDetail{
		ID:            uuid.New().String(),
		ActorID:       actorID,
		Nuit:          strings.TrimSpace(nuit),
		Nuel:          strings.TrimSpace(nuel),
		LicenseNumber: licenseNumber,
		MemberCount:   memberCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
