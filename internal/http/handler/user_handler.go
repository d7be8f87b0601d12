package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/univdir/universities-api/internal/http/response"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	user, err := h.userSvc.Create(r.Context(), req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	observability.Audit(r, "user.created", "user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req service.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	user, err := h.userSvc.Update(r.Context(), id, req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	observability.Audit(r, "user.updated", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, user)
}

// pathID parses the {id} route parameter. Non-numeric values answer 400
// before any service work happens.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "id must be numeric", nil)
		return 0, false
	}
	return uint(id), true
}
