package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/yichen-lab/congee-pos/internal/report"
)

type stubQuerier struct {
	orderCalls int
	orders     []report.Order
	expenses   []report.Expense
}

func (s *stubQuerier) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]report.Order, error) {
	s.orderCalls++
	return s.orders, nil
}

func (s *stubQuerier) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]report.Expense, error) {
	return s.expenses, nil
}

func TestResolveRange(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	now := time.Date(2025, 8, 14, 15, 30, 0, 0, loc)

	start, end := report.ResolveRange(report.PeriodDay, now, nil, nil)
	require.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, loc), start)
	require.True(t, end.After(time.Date(2025, 8, 14, 23, 59, 59, 0, loc)))

	start, _ = report.ResolveRange(report.PeriodMonth, now, nil, nil)
	require.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, loc), start)

	start, _ = report.ResolveRange(report.PeriodQuarter, now, nil, nil)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, loc), start)

	start, _ = report.ResolveRange(report.PeriodYear, now, nil, nil)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), start)

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	start, end = report.ResolveRange(report.PeriodCustom, now, &from, &to)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), start)
	require.True(t, end.After(time.Date(2025, 6, 8, 23, 0, 0, 0, loc)))
}

func TestBuildCachesReport(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loc := time.FixedZone("CST", 8*3600)
	now := time.Date(2025, 3, 21, 20, 0, 0, 0, loc)
	q := &stubQuerier{
		orders: []report.Order{{ID: "o1", Total: 115, Timestamp: report.At(now.Add(-2 * time.Hour))}},
	}
	svc := &report.Service{Q: q, R: rdb, TTL: time.Minute, Now: func() time.Time { return now }}

	first, err := svc.Build(context.Background(), report.PeriodDay, nil, nil)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), report.PeriodDay, nil, nil)
	require.NoError(t, err)

	require.Equal(t, 1, q.orderCalls, "second call must hit the cache")
	require.Equal(t, first.Summary.TotalRevenue, second.Summary.TotalRevenue)
	require.Len(t, second.Buckets, 24)
}

func TestHandlerGetValidation(t *testing.T) {
	q := &stubQuerier{}
	svc := &report.Service{Q: q}
	h := &report.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?period=week", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?period=custom&from=2025-03-21", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?period=custom&from=2025-03-22&to=2025-03-21", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetDefaultsToDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	now := time.Date(2025, 3, 21, 20, 0, 0, 0, loc)
	q := &stubQuerier{
		orders:   []report.Order{{ID: "o1", Total: 115, Timestamp: report.At(now.Add(-time.Hour))}},
		expenses: []report.Expense{{ID: "e1", Kind: report.ExpenseCOGS, Amount: 40, Timestamp: report.At(now.Add(-time.Hour))}},
	}
	h := &report.Handler{Svc: &report.Service{Q: q, Now: func() time.Time { return now }}}

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data report.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, report.ResolutionHour, resp.Data.Resolution)
	require.Equal(t, int64(115), resp.Data.Summary.TotalRevenue)
	require.Equal(t, int64(75), resp.Data.Summary.NetProfit)
}
