package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/infrastructure/http/response"
	"github.com/agrisync/agrisync/infrastructure/http/validator"
)

type RegistrationHandler struct {
	registration inbound.RegistrationUseCase
}

func NewRegistrationHandler(registration inbound.RegistrationUseCase) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

func (h *RegistrationHandler) RegisterActor(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegisterActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateRequired(req.Name) {
		response.UnprocessableEntity(w, "Name is required")
		return
	}
	if req.PrimaryPhone != "" && !validator.ValidatePhone(req.PrimaryPhone) {
		response.UnprocessableEntity(w, "Invalid primary phone number")
		return
	}
	if req.Email != "" && !validator.ValidateEmail(req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}

	resp, err := h.registration.RegisterActor(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	// 201 is the local API contract; the remote sync protocol's strict
	// 200 rule is a different surface.
	response.Success(w, http.StatusCreated, "Actor registered", resp)
}

func (h *RegistrationHandler) GetActor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, err := h.registration.GetActor(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Actor", view)
}

func (h *RegistrationHandler) ListActors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, _ := strconv.Atoi(query.Get("offset"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	filters := outbound.ActorFilters{
		Category: query.Get("category"),
		Name:     query.Get("name"),
	}

	actors, total, err := h.registration.ListActors(r.Context(), offset, limit, filters)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Actors", map[string]interface{}{
		"actors": actors,
		"total":  total,
	})
}

func (h *RegistrationHandler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nuit string `json:"nuit"`
		Nuel string `json:"nuel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Nuit == "" && req.Nuel == "" {
		response.BadRequest(w, "At least one of nuit or nuel is required")
		return
	}

	result, err := h.registration.CheckDuplicate(r.Context(), req.Nuit, req.Nuel)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Duplicate check", result)
}

func (h *RegistrationHandler) AssignGroupManager(w http.ResponseWriter, r *http.Request) {
	var req inbound.AssignGroupManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.ActorID = mux.Vars(r)["id"]

	if req.Phone != "" && !validator.ValidatePhone(req.Phone) {
		response.UnprocessableEntity(w, "Invalid phone number")
		return
	}

	manager, err := h.registration.AssignGroupManager(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Manager assigned", manager)
}

func (h *RegistrationHandler) RegisterWarehouse(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegisterWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	warehouse, err := h.registration.RegisterWarehouse(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Warehouse registered", warehouse)
}
