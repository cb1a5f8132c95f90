package inbound

import (
	"context"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

type RegisterActorRequest struct {
	Category           string `json:"category"`
	Name               string `json:"name"`
	Nuit               string `json:"nuit"`
	Nuel               string `json:"nuel"`
	MemberCount        int    `json:"member_count"`
	Province           string `json:"province"`
	District           string `json:"district"`
	AdministrativePost string `json:"administrative_post"`
	Locality           string `json:"locality"`
	PrimaryPhone       string `json:"primary_phone"`
	SecondaryPhone     string `json:"secondary_phone"`
	Email              string `json:"email"`
	ManagerName        string `json:"manager_name"`
	ManagerPhone       string `json:"manager_phone"`
	RegisteredBy       string `json:"registered_by"`
}

type RegisterActorResponse struct {
	ActorID       string `json:"actor_id"`
	LicenseNumber string `json:"license_number"`
}

type AssignGroupManagerRequest struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

type RegisterWarehouseRequest struct {
	OwnerID    string  `json:"owner_id"`
	Name       string  `json:"name"`
	CapacityKg float64 `json:"capacity_kg"`
	Province   string  `json:"province"`
	District   string  `json:"district"`
}

// DuplicateCheckResult is recomputed per registration attempt, never stored.
type DuplicateCheckResult struct {
	HasDuplicate  bool                         `json:"has_duplicate"`
	DuplicateType string                       `json:"duplicate_type,omitempty"`
	Message       string                       `json:"message,omitempty"`
	Matches       []outbound.OrganizationMatch `json:"matches,omitempty"`
}

type ActorView struct {
	Actor  *entity.Actor       `json:"actor"`
	Detail *entity.ActorDetail `json:"detail,omitempty"`
}

type RegistrationUseCase interface {
	RegisterActor(ctx context.Context, req RegisterActorRequest) (*RegisterActorResponse, error)
	AssignGroupManager(ctx context.Context, req AssignGroupManagerRequest) (*entity.GroupManager, error)
	RegisterWarehouse(ctx context.Context, req RegisterWarehouseRequest) (*entity.Warehouse, error)
	CheckDuplicate(ctx context.Context, nuit, nuel string) (*DuplicateCheckResult, error)
	GetActor(ctx context.Context, id string) (*ActorView, error)
	ListActors(ctx context.Context, offset, limit int, filters outbound.ActorFilters) ([]*entity.Actor, int, error)
}
