package entity

import (
	"time"

	"github.com/google/uuid"
)

type GroupManager struct {
	ID        string    `json:"id"`
	SyncID    string    `json:"sync_id,omitempty"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGroupManager(groupID, name, phone string) *GroupManager {
	now := time.Now().UTC()
	return &GroupManager{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
