package inbound

import (
	"context"
	"time"

	"github.com/agrisync/agrisync/domain/entity"
)

type RecordTransactionRequest struct {
	SellerID     string    `json:"seller_id"`
	BuyerID      string    `json:"buyer_id"`
	Product      string    `json:"product"`
	QuantityKg   float64   `json:"quantity_kg"`
	UnitPrice    float64   `json:"unit_price"`
	CampaignYear int       `json:"campaign_year"`
	TradedAt     time.Time `json:"traded_at"`
}

type TradeUseCase interface {
	RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*entity.OrganizationTransaction, error)
	ListTransactions(ctx context.Context, actorID string, campaignYear int) ([]*entity.OrganizationTransaction, error)
}
