package outbound

import (
	"context"
	"errors"

	"github.com/agrisync/agrisync/domain/entity"
)

var ErrWarehouseNotFound = errors.New("warehouse not found")

type OrganizationRepository interface {
	// Each create commits the row together with its pending write so the
	// queue can never reference an uncommitted record.
	CreateWarehouse(ctx context.Context, warehouse *entity.Warehouse, write *entity.PendingWrite) error
	CreateTransaction(ctx context.Context, txn *entity.OrganizationTransaction, write *entity.PendingWrite) error
	ListWarehouses(ctx context.Context, ownerID string) ([]*entity.Warehouse, error)
	ListTransactions(ctx context.Context, actorID string, campaignYear int) ([]*entity.OrganizationTransaction, error)
}
