package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/yichen-lab/congee-pos/internal/common"
	"github.com/yichen-lab/congee-pos/internal/report"
)

// Handler exposes expense endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, validate: validator.New()}
}

type expenseInput struct {
	Kind       string `json:"kind" validate:"required,oneof=cogs opex"`
	Name       string `json:"name" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Note       string `json:"note"`
	RecordedAt string `json:"recordedAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (in expenseInput) toExpense() (Expense, error) {
	e := Expense{
		Kind:   report.ExpenseKind(in.Kind),
		Name:   in.Name,
		Amount: in.Amount,
		Note:   in.Note,
	}
	if in.RecordedAt != "" {
		t, err := time.Parse(time.RFC3339, in.RecordedAt)
		if err != nil {
			return Expense{}, err
		}
		e.RecordedAt = t
	}
	return e, nil
}

// Create handles POST /api/v1/expenses.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}
	e, err := in.toExpense()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_TIMESTAMP", "recordedAt must be RFC 3339", nil)
		return
	}
	created, err := h.service.Create(r.Context(), e)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Get handles GET /api/v1/expenses/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": e})
}

// Update handles PUT /api/v1/expenses/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}
	e, err := in.toExpense()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_TIMESTAMP", "recordedAt must be RFC 3339", nil)
		return
	}
	e.ID = chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), e); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": e})
}

// Delete handles DELETE /api/v1/expenses/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/expenses with optional from/to/kind filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := common.AtoiDefault(q.Get("page"), 1)
	perPage := common.AtoiDefault(q.Get("perPage"), 20)
	if page < 1 {
		page = 1
	}

	params := ListParams{Kind: q.Get("kind"), Limit: perPage, Offset: (page - 1) * perPage}
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

	rows, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "expense not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
