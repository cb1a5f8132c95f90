package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/infrastructure/http/response"
)

type TradeHandler struct {
	trade inbound.TradeUseCase
}

func NewTradeHandler(trade inbound.TradeUseCase) *TradeHandler {
	return &TradeHandler{trade: trade}
}

func (h *TradeHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req inbound.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	txn, err := h.trade.RecordTransaction(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Transaction recorded", txn)
}

func (h *TradeHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	actorID := query.Get("actor_id")
	campaignYear, _ := strconv.Atoi(query.Get("campaign_year"))

	txns, err := h.trade.ListTransactions(r.Context(), actorID, campaignYear)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Transactions", txns)
}
