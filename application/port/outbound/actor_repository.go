package outbound

import (
	"context"
	"errors"

	"github.com/agrisync/agrisync/domain/entity"
)

var (
	ErrActorNotFound  = errors.New("actor not found")
	ErrDetailNotFound = errors.New("actor detail not found")
)

// RegistrationRecords is the set of rows committed atomically when an actor
// is registered. Detail is always present; the rest depend on the category.
type RegistrationRecords struct {
	Actor   *entity.Actor
	Detail  *entity.ActorDetail
	Address *entity.Address
	Contact *entity.Contact
	Manager *entity.GroupManager
}

type ActorFilters struct {
	Category string
	Name     string
}

// OrganizationMatch is one organization row whose legal identifier matched a
// duplicate probe.
type OrganizationMatch struct {
	ActorID  string `json:"actor_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Nuit     string `json:"nuit"`
	Nuel     string `json:"nuel"`
}

type ActorRepository interface {
	// CommitRegistration persists the registration rows and their pending
	// writes in one transaction. If the local commit fails nothing may be
	// queued for remote sync.
	CommitRegistration(ctx context.Context, rec RegistrationRecords, writes []*entity.PendingWrite) error
	// CreateGroupManager persists a manager row and its pending write in
	// one transaction, same contract as CommitRegistration.
	CreateGroupManager(ctx context.Context, manager *entity.GroupManager, write *entity.PendingWrite) error
	FindByID(ctx context.Context, id string) (*entity.Actor, error)
	FindDetailByActorID(ctx context.Context, actorID string) (*entity.ActorDetail, error)
	FindAll(ctx context.Context, offset, limit int, filters ActorFilters) ([]*entity.Actor, int, error)
	// Duplicate probes. Matches are exact against trimmed stored values;
	// placeholder identifiers are excluded by the query itself.
	FindOrganizationsByNuit(ctx context.Context, nuit string) ([]OrganizationMatch, error)
	FindOrganizationsByNuel(ctx context.Context, nuel string) ([]OrganizationMatch, error)
}
