package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/http/response"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/queue"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/service"
)

// UniversityHandler fronts the work queue: every operation, reads
// included, is enqueued as a named job and awaited, so writes are
// serialized by the single consumer.
type UniversityHandler struct {
	svc *service.UniversityService
	q   *queue.Queue
}

func NewUniversityHandler(svc *service.UniversityService, q *queue.Queue) *UniversityHandler {
	return &UniversityHandler{svc: svc, q: q}
}

func (h *UniversityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.UniversityInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	u, err := queue.Await(r.Context(), h.q, "university.create", func(ctx context.Context) (*domain.University, error) {
		return h.svc.Create(ctx, req)
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	observability.Audit(r, "university.created", "university_id", u.ID)
	response.JSON(w, r, http.StatusCreated, u)
}

func (h *UniversityHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	page := repository.PageRequest{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}

	res, err := queue.Await(r.Context(), h.q, "university.get_all", func(ctx context.Context) (*repository.PageResult[domain.University], error) {
		return h.svc.GetAll(ctx, country, page)
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

func (h *UniversityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := queue.Await(r.Context(), h.q, "university.get_by_id", func(ctx context.Context) (*domain.University, error) {
		return h.svc.GetByID(ctx, id)
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

func (h *UniversityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req service.UniversityInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	u, err := queue.Await(r.Context(), h.q, "university.update", func(ctx context.Context) (*domain.University, error) {
		return h.svc.Update(ctx, id, req)
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	observability.Audit(r, "university.updated", "university_id", u.ID)
	response.JSON(w, r, http.StatusOK, u)
}

func (h *UniversityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	_, err := queue.Await(r.Context(), h.q, "university.remove", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.svc.Remove(ctx, id)
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	observability.Audit(r, "university.removed", "university_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
