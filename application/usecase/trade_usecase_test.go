package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	domainerror "github.com/agrisync/agrisync/domain/error"
)

func TestRecordTransaction_Success(t *testing.T) {
	actors := new(MockActorRepository)
	orgs := new(MockOrganizationRepository)
	syncReq := &stubSyncRequester{}
	uc := NewTradeUseCase(actors, orgs, syncReq, testUseCaseLogger())

	seller := entity.NewActor(entity.CategoryFarmer, "Amélia", "user-1")
	buyer := entity.NewActor(entity.CategoryCooperative, "Coop", "user-1")
	actors.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
	actors.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
	orgs.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	txn, err := uc.RecordTransaction(context.Background(), inbound.RecordTransactionRequest{
		SellerID:     seller.ID,
		BuyerID:      buyer.ID,
		Product:      "cashew",
		QuantityKg:   250,
		UnitPrice:    45.5,
		CampaignYear: 2026,
	})

	require.NoError(t, err)
	assert.InDelta(t, 250*45.5, txn.TotalAmount, 0.001)
	assert.Equal(t, 1, syncReq.requests)

	write := orgs.Calls[len(orgs.Calls)-1].Arguments.Get(2).(*entity.PendingWrite)
	assert.Equal(t, entity.TableOrganizationTransactions, write.TableName)
	assert.Equal(t, entity.OpInsert, write.Operation)
}

func TestRecordTransaction_RejectsNonPositiveQuantity(t *testing.T) {
	uc := NewTradeUseCase(new(MockActorRepository), new(MockOrganizationRepository), &stubSyncRequester{}, testUseCaseLogger())

	_, err := uc.RecordTransaction(context.Background(), inbound.RecordTransactionRequest{
		SellerID:   "a",
		BuyerID:    "b",
		QuantityKg: 0,
	})

	require.Error(t, err)
	var appErr *domainerror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerror.ErrCodeInvalidQuantity, appErr.Code)
}

func TestRecordTransaction_RejectsSelfTrade(t *testing.T) {
	uc := NewTradeUseCase(new(MockActorRepository), new(MockOrganizationRepository), &stubSyncRequester{}, testUseCaseLogger())

	_, err := uc.RecordTransaction(context.Background(), inbound.RecordTransactionRequest{
		SellerID:   "a",
		BuyerID:    "a",
		QuantityKg: 10,
	})

	require.Error(t, err)
}

func TestRecordTransaction_UnknownSeller(t *testing.T) {
	actors := new(MockActorRepository)
	uc := NewTradeUseCase(actors, new(MockOrganizationRepository), &stubSyncRequester{}, testUseCaseLogger())

	actors.On("FindByID", mock.Anything, "missing").Return(nil, outbound.ErrActorNotFound)

	_, err := uc.RecordTransaction(context.Background(), inbound.RecordTransactionRequest{
		SellerID:   "missing",
		BuyerID:    "b",
		QuantityKg: 10,
	})

	require.Error(t, err)
	var appErr *domainerror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerror.ErrCodeActorNotFound, appErr.Code)
}

func TestListTransactions_RequiresActor(t *testing.T) {
	uc := NewTradeUseCase(new(MockActorRepository), new(MockOrganizationRepository), &stubSyncRequester{}, testUseCaseLogger())

	_, err := uc.ListTransactions(context.Background(), "", 0)

	require.Error(t, err)
}
