package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yichen-lab/congee-pos/internal/common"
	"github.com/yichen-lab/congee-pos/internal/pricing"
)

// Handler exposes cart endpoints.
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

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// AddLine handles POST /api/v1/carts/{id}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID   string   `json:"productId"`
		Qty         int      `json:"qty"`
		ModifierIDs []string `json:"modifierIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return
	}
	if in.Qty == 0 {
		in.Qty = 1
	}
	c, err := h.service.AddLine(r.Context(), chi.URLParam(r, "id"), in.ProductID, in.Qty, pricing.Selection(in.ModifierIDs))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// UpdateLine handles PATCH /api/v1/carts/{id}/lines/{lineId}. Quantity and
// modifier selection may be changed independently or together.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Qty         *int      `json:"qty"`
		ModifierIDs *[]string `json:"modifierIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	lineID := chi.URLParam(r, "lineId")
	var (
		c   Cart
		err error
	)
	switch {
	case in.Qty == nil && in.ModifierIDs == nil:
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "nothing to update", nil)
		return
	case in.Qty != nil && in.ModifierIDs != nil:
		if _, err = h.service.SetModifiers(r.Context(), cartID, lineID, pricing.Selection(*in.ModifierIDs)); err == nil {
			c, err = h.service.UpdateQty(r.Context(), cartID, lineID, *in.Qty)
		}
	case in.Qty != nil:
		c, err = h.service.UpdateQty(r.Context(), cartID, lineID, *in.Qty)
	default:
		c, err = h.service.SetModifiers(r.Context(), cartID, lineID, pricing.Selection(*in.ModifierIDs))
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// ToggleModifier handles POST /api/v1/carts/{id}/lines/{lineId}/toggle/{modifierId}.
func (h *Handler) ToggleModifier(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ToggleModifier(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"), chi.URLParam(r, "modifierId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// RemoveLine handles DELETE /api/v1/carts/{id}/lines/{lineId}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// Clear handles DELETE /api/v1/carts/{id}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
