package handler

import (
	"net/http"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/infrastructure/http/response"
)

type SyncHandler struct {
	sync inbound.SyncService
}

func NewSyncHandler(sync inbound.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.sync.Status(r.Context())
	response.Success(w, http.StatusOK, "Sync status", status)
}

// Trigger requests a pass and returns immediately; progress is observable
// on the event stream and the status endpoint.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	h.sync.RequestSync()
	response.Success(w, http.StatusAccepted, "Sync requested", nil)
}
