package report

import (
	"net/http"
	"time"

	"github.com/yichen-lab/congee-pos/internal/common"
)

// Handler exposes the reporting read endpoint.
type Handler struct {
	Svc *Service
}

// Get returns the aggregated report for the requested period.
// period=day|month|quarter|year|custom; custom requires from and to (YYYY-MM-DD).
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORT_NOT_CONFIGURED", "report service not configured", nil)
		return
	}
	query := r.URL.Query()
	period := PeriodKind(query.Get("period"))
	switch period {
	case "":
		period = PeriodDay
	case PeriodDay, PeriodMonth, PeriodQuarter, PeriodYear, PeriodCustom:
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown period", nil)
		return
	}

	var customFrom, customTo *time.Time
	if period == PeriodCustom {
		from, err := time.Parse("2006-01-02", query.Get("from"))
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid from date", nil)
			return
		}
		to, err := time.Parse("2006-01-02", query.Get("to"))
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid to date", nil)
			return
		}
		if to.Before(from) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from must not be after to", nil)
			return
		}
		customFrom, customTo = &from, &to
	}

	built, err := h.Svc.Build(r.Context(), period, customFrom, customTo)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORT_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": built})
}
