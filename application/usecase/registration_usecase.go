package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	domainerror "github.com/agrisync/agrisync/domain/error"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

// SyncRequester is the slice of the sync service a commit needs: ask for
// a pass, never wait for one.
type SyncRequester interface {
	RequestSync()
}

type registrationUseCase struct {
	actors outbound.ActorRepository
	orgs   outbound.OrganizationRepository
	sync   SyncRequester
	logger logger.Logger
}

func NewRegistrationUseCase(
	actors outbound.ActorRepository,
	orgs outbound.OrganizationRepository,
	sync SyncRequester,
	log logger.Logger,
) inbound.RegistrationUseCase {
	return &registrationUseCase{
		actors: actors,
		orgs:   orgs,
		sync:   sync,
		logger: log,
	}
}

// RegisterActor commits a full registration locally and queues it for
// remote sync. The commit is optimistic: it succeeds offline, and the
// queue carries it to the backend later.
func (uc *registrationUseCase) RegisterActor(ctx context.Context, req inbound.RegisterActorRequest) (*inbound.RegisterActorResponse, error) {
	if !entity.ValidCategory(req.Category) {
		return nil, domainerror.ErrInvalidCategory(req.Category)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, domainerror.ErrMissingName()
	}

	nuit := strings.TrimSpace(req.Nuit)
	nuel := strings.TrimSpace(req.Nuel)
	if !isPlaceholderIdentifier(nuit) && !isValidNuit(nuit) {
		return nil, domainerror.ErrInvalidNuit(nuit)
	}

	actor := entity.NewActor(req.Category, req.Name, req.RegisteredBy)

	// Only legal organizations carry unique identifiers; farmers and
	// informal groups skip the duplicate check entirely.
	if actor.IsOrganization() {
		result, err := uc.CheckDuplicate(ctx, nuit, nuel)
		if err != nil {
			return nil, err
		}
		if result.HasDuplicate {
			if result.DuplicateType == "nuit" {
				return nil, domainerror.ErrDuplicateNuit(nuit)
			}
			return nil, domainerror.ErrDuplicateNuel(nuel)
		}
	}

	license := entity.DeriveLicenseNumber(req.RegisteredBy)
	detail := entity.NewActorDetail(actor.ID, nuit, nuel, license, req.MemberCount)

	rec := outbound.RegistrationRecords{
		Actor:  actor,
		Detail: detail,
	}
	if req.Province != "" || req.District != "" || req.AdministrativePost != "" || req.Locality != "" {
		rec.Address = entity.NewAddress(actor.ID, req.Province, req.District, req.AdministrativePost, req.Locality)
	}
	if req.PrimaryPhone != "" || req.SecondaryPhone != "" || req.Email != "" {
		rec.Contact = entity.NewContact(actor.ID, req.PrimaryPhone, req.SecondaryPhone, req.Email)
	}
	if req.Category == entity.CategoryGroup && strings.TrimSpace(req.ManagerName) != "" {
		rec.Manager = entity.NewGroupManager(actor.ID, req.ManagerName, req.ManagerPhone)
	}

	writes, err := registrationWrites(rec)
	if err != nil {
		return nil, domainerror.ErrInternalServerError("failed to snapshot registration", err)
	}

	if err := uc.actors.CommitRegistration(ctx, rec, writes); err != nil {
		return nil, domainerror.ErrLocalCommitFailed("register_actor", err)
	}

	uc.sync.RequestSync()
	uc.logger.Info(ctx, "Actor registered", map[string]interface{}{
		"actor_id": actor.ID,
		"category": actor.Category,
	})

	return &inbound.RegisterActorResponse{
		ActorID:       actor.ID,
		LicenseNumber: license,
	}, nil
}

// registrationWrites snapshots the committed rows into queue items in
// foreign-key order, so replay on the backend can apply them top down.
func registrationWrites(rec outbound.RegistrationRecords) ([]*entity.PendingWrite, error) {
	type row struct {
		table string
		data  interface{}
	}
	rows := []row{
		{entity.TableActors, rec.Actor},
		{entity.TableActorDetails, rec.Detail},
	}
	if rec.Address != nil {
		rows = append(rows, row{entity.TableAddresses, rec.Address})
	}
	if rec.Contact != nil {
		rows = append(rows, row{entity.TableContacts, rec.Contact})
	}
	if rec.Manager != nil {
		rows = append(rows, row{entity.TableGroupManagers, rec.Manager})
	}

	writes := make([]*entity.PendingWrite, 0, len(rows))
	for _, r := range rows {
		payload, err := json.Marshal(r.data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s row: %w", r.table, err)
		}
		writes = append(writes, entity.NewPendingWrite(entity.OpInsert, r.table, payload))
	}
	return writes, nil
}

// AssignGroupManager attaches a manager to an existing informal group.
// Organizations carry their own legal representatives remotely and never
// get a manager row here.
func (uc *registrationUseCase) AssignGroupManager(ctx context.Context, req inbound.AssignGroupManagerRequest) (*entity.GroupManager, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domainerror.ErrMissingName()
	}

	actor, err := uc.actors.FindByID(ctx, req.ActorID)
	if err != nil {
		return nil, domainerror.ErrActorNotFound(req.ActorID)
	}
	if actor.Category != entity.CategoryGroup {
		return nil, domainerror.ErrNotAGroup(actor.Category)
	}

	manager := entity.NewGroupManager(actor.ID, req.Name, req.Phone)

	payload, err := json.Marshal(manager)
	if err != nil {
		return nil, domainerror.ErrInternalServerError("failed to snapshot group manager", err)
	}
	write := entity.NewPendingWrite(entity.OpInsert, entity.TableGroupManagers, payload)

	if err := uc.actors.CreateGroupManager(ctx, manager, write); err != nil {
		return nil, domainerror.ErrLocalCommitFailed("assign_group_manager", err)
	}

	uc.sync.RequestSync()
	return manager, nil
}

func (uc *registrationUseCase) RegisterWarehouse(ctx context.Context, req inbound.RegisterWarehouseRequest) (*entity.Warehouse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domainerror.ErrMissingName()
	}
	if req.CapacityKg < 0 {
		return nil, domainerror.ErrInvalidQuantity(fmt.Sprintf("capacity_kg: %v", req.CapacityKg))
	}

	if _, err := uc.actors.FindByID(ctx, req.OwnerID); err != nil {
		return nil, domainerror.ErrActorNotFound(req.OwnerID)
	}

	warehouse := entity.NewWarehouse(req.OwnerID, req.Name, req.CapacityKg, req.Province, req.District)

	payload, err := json.Marshal(warehouse)
	if err != nil {
		return nil, domainerror.ErrInternalServerError("failed to snapshot warehouse", err)
	}
	write := entity.NewPendingWrite(entity.OpInsert, entity.TableWarehouses, payload)

	if err := uc.orgs.CreateWarehouse(ctx, warehouse, write); err != nil {
		return nil, domainerror.ErrLocalCommitFailed("register_warehouse", err)
	}

	uc.sync.RequestSync()
	return warehouse, nil
}

// CheckDuplicate probes organization identifiers. NUIT wins: when it
// matches, NUEL is not consulted at all.
func (uc *registrationUseCase) CheckDuplicate(ctx context.Context, nuit, nuel string) (*inbound.DuplicateCheckResult, error) {
	nuit = strings.TrimSpace(nuit)
	nuel = strings.TrimSpace(nuel)

	if !isPlaceholderIdentifier(nuit) {
		matches, err := uc.actors.FindOrganizationsByNuit(ctx, nuit)
		if err != nil {
			return nil, domainerror.ErrInternalServerError("duplicate check failed", err)
		}
		if len(matches) > 0 {
			return &inbound.DuplicateCheckResult{
				HasDuplicate:  true,
				DuplicateType: "nuit",
				Message:       fmt.Sprintf("An organization with NUIT %s is already registered", nuit),
				Matches:       matches,
			}, nil
		}
	}

	if !isPlaceholderIdentifier(nuel) {
		matches, err := uc.actors.FindOrganizationsByNuel(ctx, nuel)
		if err != nil {
			return nil, domainerror.ErrInternalServerError("duplicate check failed", err)
		}
		if len(matches) > 0 {
			return &inbound.DuplicateCheckResult{
				HasDuplicate:  true,
				DuplicateType: "nuel",
				Message:       fmt.Sprintf("An organization with NUEL %s is already registered", nuel),
				Matches:       matches,
			}, nil
		}
	}

	return &inbound.DuplicateCheckResult{HasDuplicate: false}, nil
}

func (uc *registrationUseCase) GetActor(ctx context.Context, id string) (*inbound.ActorView, error) {
	actor, err := uc.actors.FindByID(ctx, id)
	if err != nil {
		return nil, domainerror.ErrActorNotFound(id)
	}

	view := &inbound.ActorView{Actor: actor}
	if detail, err := uc.actors.FindDetailByActorID(ctx, id); err == nil {
		view.Detail = detail
	}
	return view, nil
}

func (uc *registrationUseCase) ListActors(ctx context.Context, offset, limit int, filters outbound.ActorFilters) ([]*entity.Actor, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.actors.FindAll(ctx, offset, limit, filters)
}

// isPlaceholderIdentifier mirrors the SQL exclusion: empty, "0", "N/A"
// in any case, and all-zero strings are not real identifiers.
func isPlaceholderIdentifier(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" || v == "0" || strings.EqualFold(v, "n/a") {
		return true
	}
	for _, r := range v {
		if r != '0' {
			return false
		}
	}
	return true
}

// isValidNuit requires exactly nine digits.
func isValidNuit(nuit string) bool {
	if len(nuit) != 9 {
		return false
	}
	for _, r := range nuit {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
