package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

type actorRepository struct {
	store *Store
}

func NewActorRepository(store *Store) outbound.ActorRepository {
	return &actorRepository{store: store}
}

func (r *actorRepository) CommitRegistration(ctx context.Context, rec outbound.RegistrationRecords, writes []*entity.PendingWrite) error {
	if rec.Actor == nil || rec.Detail == nil {
		return fmt.Errorf("actor and detail are required")
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertActor(ctx, tx, rec.Actor); err != nil {
			return err
		}
		if err := insertActorDetail(ctx, tx, rec.Detail); err != nil {
			return err
		}
		if rec.Address != nil {
			if err := insertAddress(ctx, tx, rec.Address); err != nil {
				return err
			}
		}
		if rec.Contact != nil {
			if err := insertContact(ctx, tx, rec.Contact); err != nil {
				return err
			}
		}
		if rec.Manager != nil {
			if err := insertGroupManager(ctx, tx, rec.Manager); err != nil {
				return err
			}
		}
		for _, w := range writes {
			if err := insertPendingWriteTx(ctx, tx, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.store.notifier.Notify(
		entity.TableActors,
		entity.TableActorDetails,
		entity.TableAddresses,
		entity.TableContacts,
		entity.TableGroupManagers,
		pendingWritesTable,
	)
	return nil
}

func (r *actorRepository) CreateGroupManager(ctx context.Context, manager *entity.GroupManager, write *entity.PendingWrite) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertGroupManager(ctx, tx, manager); err != nil {
			return err
		}
		return insertPendingWriteTx(ctx, tx, write)
	})
	if err != nil {
		return err
	}

	r.store.notifier.Notify(entity.TableGroupManagers, pendingWritesTable)
	return nil
}

func insertActor(ctx context.Context, tx *sql.Tx, a *entity.Actor) error {
	query := `
		INSERT INTO actors (id, sync_id, category, name, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, a.ID, a.SyncID, a.Category, a.Name, a.OwnerID, a.CreatedAt, a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert actor: %w", err)
	}
	return nil
}

func insertActorDetail(ctx context.Context, tx *sql.Tx, d *entity.ActorDetail) error {
	query := `
		INSERT INTO actor_details (id, sync_id, actor_id, nuit, nuel, license_number, member_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, d.ID, d.SyncID, d.ActorID, d.Nuit, d.Nuel, d.LicenseNumber, d.MemberCount, d.CreatedAt, d.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert actor detail: %w", err)
	}
	return nil
}

func insertAddress(ctx context.Context, tx *sql.Tx, a *entity.Address) error {
	query := `
		INSERT INTO addresses (id, sync_id, actor_id, province, district, administrative_post, locality, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, a.ID, a.SyncID, a.ActorID, a.Province, a.District, a.AdministrativePost, a.Locality, a.CreatedAt, a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func insertContact(ctx context.Context, tx *sql.Tx, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (id, sync_id, actor_id, primary_phone, secondary_phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, c.ID, c.SyncID, c.ActorID, c.PrimaryPhone, c.SecondaryPhone, c.Email, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func insertGroupManager(ctx context.Context, tx *sql.Tx, m *entity.GroupManager) error {
	query := `
		INSERT INTO group_managers (id, sync_id, group_id, name, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, m.ID, m.SyncID, m.GroupID, m.Name, m.Phone, m.CreatedAt, m.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert group manager: %w", err)
	}
	return nil
}

func (r *actorRepository) FindByID(ctx context.Context, id string) (*entity.Actor, error) {
	query := `
		SELECT id, sync_id, category, name, owner_id, created_at, updated_at
		FROM actors
		WHERE id = ?
	`

	var actor entity.Actor
	err := r.store.db.QueryRowContext(ctx, query, id).Scan(
		&actor.ID,
		&actor.SyncID,
		&actor.Category,
		&actor.Name,
		&actor.OwnerID,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to find actor by ID: %w", err)
	}

	return &actor, nil
}

func (r *actorRepository) FindDetailByActorID(ctx context.Context, actorID string) (*entity.ActorDetail, error) {
	query := `
		SELECT id, sync_id, actor_id, nuit, nuel, license_number, member_count, created_at, updated_at
		FROM actor_details
		WHERE actor_id = ?
	`

	var detail entity.ActorDetail
	err := r.store.db.QueryRowContext(ctx, query, actorID).Scan(
		&detail.ID,
		&detail.SyncID,
		&detail.ActorID,
		&detail.Nuit,
		&detail.Nuel,
		&detail.LicenseNumber,
		&detail.MemberCount,
		&detail.CreatedAt,
		&detail.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrDetailNotFound
		}
		return nil, fmt.Errorf("failed to find actor detail: %w", err)
	}

	return &detail, nil
}

func (r *actorRepository) FindAll(ctx context.Context, offset, limit int, filters outbound.ActorFilters) ([]*entity.Actor, int, error) {
	whereClause := "WHERE 1 = 1"
	args := []interface{}{}

	if filters.Category != "" {
		whereClause += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.Name != "" {
		whereClause += " AND name LIKE ?"
		args = append(args, "%"+filters.Name+"%")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM actors %s", whereClause)
	var total int
	if err := r.store.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count actors: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, sync_id, category, name, owner_id, created_at, updated_at
		FROM actors
		%s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, whereClause)
	args = append(args, limit, offset)

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query actors: %w", err)
	}
	defer rows.Close()

	var actors []*entity.Actor
	for rows.Next() {
		var actor entity.Actor
		if err := rows.Scan(
			&actor.ID,
			&actor.SyncID,
			&actor.Category,
			&actor.Name,
			&actor.OwnerID,
			&actor.CreatedAt,
			&actor.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan actor: %w", err)
		}
		actors = append(actors, &actor)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate actors: %w", err)
	}

	return actors, total, nil
}

// Placeholder identifiers never count as duplicates: empty, "0", "N/A" and
// all-zero strings are excluded in the query itself. TRIM(x, '0') = ''
// catches any width of all-zero identifier.
const organizationMatchQuery = `
	SELECT a.id, a.name, a.category, d.nuit, d.nuel
	FROM actor_details d
	JOIN actors a ON a.id = d.actor_id
	WHERE a.category IN (?, ?, ?)
	  AND TRIM(d.%[1]s) = ?
	  AND TRIM(d.%[1]s) NOT IN ('', '0', 'N/A', 'n/a')
	  AND TRIM(d.%[1]s, '0') <> ''
`

func (r *actorRepository) FindOrganizationsByNuit(ctx context.Context, nuit string) ([]outbound.OrganizationMatch, error) {
	return r.findOrganizationMatches(ctx, "nuit", nuit)
}

func (r *actorRepository) FindOrganizationsByNuel(ctx context.Context, nuel string) ([]outbound.OrganizationMatch, error) {
	return r.findOrganizationMatches(ctx, "nuel", nuel)
}

func (r *actorRepository) findOrganizationMatches(ctx context.Context, column, value string) ([]outbound.OrganizationMatch, error) {
	// column is one of two fixed identifier columns, never user input.
	query := fmt.Sprintf(organizationMatchQuery, column)

	rows, err := r.store.db.QueryContext(ctx, query,
		entity.CategoryCooperative,
		entity.CategoryAssociation,
		entity.CategoryUnion,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization matches: %w", err)
	}
	defer rows.Close()

	var matches []outbound.OrganizationMatch
	for rows.Next() {
		var m outbound.OrganizationMatch
		if err := rows.Scan(&m.ActorID, &m.Name, &m.Category, &m.Nuit, &m.Nuel); err != nil {
			return nil, fmt.Errorf("failed to scan organization match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organization matches: %w", err)
	}

	return matches, nil
}
