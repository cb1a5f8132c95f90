package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	domainerror "github.com/agrisync/agrisync/domain/error"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

type tradeUseCase struct {
	actors outbound.ActorRepository
	orgs   outbound.OrganizationRepository
	sync   SyncRequester
	logger logger.Logger
}

func NewTradeUseCase(
	actors outbound.ActorRepository,
	orgs outbound.OrganizationRepository,
	sync SyncRequester,
	log logger.Logger,
) inbound.TradeUseCase {
	return &tradeUseCase{
		actors: actors,
		orgs:   orgs,
		sync:   sync,
		logger: log,
	}
}

func (uc *tradeUseCase) RecordTransaction(ctx context.Context, req inbound.RecordTransactionRequest) (*entity.OrganizationTransaction, error) {
	if req.QuantityKg <= 0 {
		return nil, domainerror.ErrInvalidQuantity(fmt.Sprintf("quantity_kg: %v", req.QuantityKg))
	}
	if req.UnitPrice < 0 {
		return nil, domainerror.ErrInvalidQuantity(fmt.Sprintf("unit_price: %v", req.UnitPrice))
	}
	if req.SellerID == req.BuyerID {
		return nil, domainerror.ErrInvalidQuantity("seller and buyer must differ")
	}

	if _, err := uc.actors.FindByID(ctx, req.SellerID); err != nil {
		return nil, domainerror.ErrActorNotFound(req.SellerID)
	}
	if _, err := uc.actors.FindByID(ctx, req.BuyerID); err != nil {
		return nil, domainerror.ErrActorNotFound(req.BuyerID)
	}

	txn := entity.NewOrganizationTransaction(
		req.SellerID, req.BuyerID, req.Product,
		req.QuantityKg, req.UnitPrice, req.CampaignYear, req.TradedAt,
	)

	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, domainerror.ErrInternalServerError("failed to snapshot transaction", err)
	}
	write := entity.NewPendingWrite(entity.OpInsert, entity.TableOrganizationTransactions, payload)

	if err := uc.orgs.CreateTransaction(ctx, txn, write); err != nil {
		return nil, domainerror.ErrLocalCommitFailed("record_transaction", err)
	}

	uc.sync.RequestSync()
	uc.logger.Info(ctx, "Transaction recorded", map[string]interface{}{
		"transaction_id": txn.ID,
		"total_amount":   txn.TotalAmount,
	})
	return txn, nil
}

func (uc *tradeUseCase) ListTransactions(ctx context.Context, actorID string, campaignYear int) ([]*entity.OrganizationTransaction, error) {
	if actorID == "" {
		return nil, domainerror.ErrActorNotFound("")
	}
	return uc.orgs.ListTransactions(ctx, actorID, campaignYear)
}
