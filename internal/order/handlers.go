package order

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yichen-lab/congee-pos/internal/common"
)

// Handler exposes order read endpoints and the void operation.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// List handles GET /api/v1/orders with optional from/to date filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := common.AtoiDefault(q.Get("page"), 1)
	perPage := common.AtoiDefault(q.Get("perPage"), 20)
	if page < 1 {
		page = 1
	}

	params := ListParams{Limit: perPage, Offset: (page - 1) * perPage}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{
		{q.Get("from"), &params.From},
		{q.Get("to"), &params.To},
	} {
		if bound.raw == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", bound.raw, time.Local)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_DATE", "dates must be YYYY-MM-DD", nil)
			return
		}
		*bound.dst = &t
	}
	if params.To != nil {
		end := params.To.Add(24 * time.Hour)
		params.To = &end
	}

	orders, total, err := h.service.List(r.Context(), params)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       orders,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// Void handles POST /api/v1/orders/{id}/void.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Void(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": StatusVoided}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
