package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationTransaction records one commercialization event between two
// registered actors (e.g. a cooperative buying raw cashew from a farmer).
type OrganizationTransaction struct {
	ID           string    `json:"id"`
	SyncID       string    `json:"sync_id,omitempty"`
	SellerID     string    `json:"seller_id"`
	BuyerID      string    `json:"buyer_id"`
	Product      string    `json:"product"`
	QuantityKg   float64   `json:"quantity_kg"`
	UnitPrice    float64   `json:"unit_price"`
	TotalAmount  float64   `json:"total_amount"`
	CampaignYear int       `json:"campaign_year"`
	TradedAt     time.Time `json:"traded_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewOrganizationTransaction(sellerID, buyerID, product string, quantityKg, unitPrice float64, campaignYear int, tradedAt time.Time) *OrganizationTransaction {
	now := time.Now().UTC()
	if tradedAt.IsZero() {
		tradedAt = now
	}
	return &OrganizationTransaction{
		ID:           uuid.New().String(),
		SellerID:     sellerID,
		BuyerID:      buyerID,
		Product:      product,
		QuantityKg:   quantityKg,
		UnitPrice:    unitPrice,
		TotalAmount:  quantityKg * unitPrice,
		CampaignYear: campaignYear,
		TradedAt:     tradedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
