package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

type organizationRepository struct {
	store *Store
}

func NewOrganizationRepository(store *Store) outbound.OrganizationRepository {
	return &organizationRepository{store: store}
}

func (r *organizationRepository) CreateWarehouse(ctx context.Context, warehouse *entity.Warehouse, write *entity.PendingWrite) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO warehouses (id, sync_id, owner_id, name, capacity_kg, province, district, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			warehouse.ID, warehouse.SyncID, warehouse.OwnerID, warehouse.Name,
			warehouse.CapacityKg, warehouse.Province, warehouse.District,
			warehouse.CreatedAt, warehouse.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert warehouse: %w", err)
		}
		if write != nil {
			return insertPendingWriteTx(ctx, tx, write)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.store.notifier.Notify(entity.TableWarehouses, pendingWritesTable)
	return nil
}

func (r *organizationRepository) CreateTransaction(ctx context.Context, txn *entity.OrganizationTransaction, write *entity.PendingWrite) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO organization_transactions
				(id, sync_id, seller_id, buyer_id, product, quantity_kg, unit_price, total_amount, campaign_year, traded_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			txn.ID, txn.SyncID, txn.SellerID, txn.BuyerID, txn.Product,
			txn.QuantityKg, txn.UnitPrice, txn.TotalAmount, txn.CampaignYear,
			txn.TradedAt, txn.CreatedAt, txn.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		if write != nil {
			return insertPendingWriteTx(ctx, tx, write)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.store.notifier.Notify(entity.TableOrganizationTransactions, pendingWritesTable)
	return nil
}

func (r *organizationRepository) ListWarehouses(ctx context.Context, ownerID string) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, sync_id, owner_id, name, capacity_kg, province, district, created_at, updated_at
		FROM warehouses
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.store.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(
			&w.ID, &w.SyncID, &w.OwnerID, &w.Name, &w.CapacityKg,
			&w.Province, &w.District, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warehouses: %w", err)
	}

	return warehouses, nil
}

func (r *organizationRepository) ListTransactions(ctx context.Context, actorID string, campaignYear int) ([]*entity.OrganizationTransaction, error) {
	whereClause := "WHERE (seller_id = ? OR buyer_id = ?)"
	args := []interface{}{actorID, actorID}
	if campaignYear > 0 {
		whereClause += " AND campaign_year = ?"
		args = append(args, campaignYear)
	}

	query := fmt.Sprintf(`
		SELECT id, sync_id, seller_id, buyer_id, product, quantity_kg, unit_price, total_amount, campaign_year, traded_at, created_at, updated_at
		FROM organization_transactions
		%s
		ORDER BY traded_at DESC
	`, whereClause)

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entity.OrganizationTransaction
	for rows.Next() {
		var t entity.OrganizationTransaction
		if err := rows.Scan(
			&t.ID, &t.SyncID, &t.SellerID, &t.BuyerID, &t.Product,
			&t.QuantityKg, &t.UnitPrice, &t.TotalAmount, &t.CampaignYear,
			&t.TradedAt, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
