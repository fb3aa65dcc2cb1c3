package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Querier defines the storage reads required to build a report.
type Querier interface {
	ListOrdersBetween(ctx context.Context, from, to time.Time) ([]Order, error)
	ListExpensesBetween(ctx context.Context, from, to time.Time) ([]Expense, error)
}

// Service loads transaction history and runs the aggregator, with a short
// Redis cache in front since the dashboard polls while open.
type Service struct {
	Q   Querier
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ResolveRange expands a period selection into concrete range bounds the way
// the dashboard does: periods anchor to the current day/month/quarter/year,
// custom uses the provided dates expanded to full days.
func ResolveRange(period PeriodKind, now time.Time, customFrom, customTo *time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	switch period {
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodQuarter:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	case PeriodCustom:
		if customFrom != nil && customTo != nil {
			start = time.Date(customFrom.Year(), customFrom.Month(), customFrom.Day(), 0, 0, 0, 0, now.Location())
			end = time.Date(customTo.Year(), customTo.Month(), customTo.Day(), 0, 0, 0, 0, now.Location()).
				AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return start, end
}

// Build loads in-range orders and expenses and aggregates them.
func (s *Service) Build(ctx context.Context, period PeriodKind, customFrom, customTo *time.Time) (Report, error) {
	if s == nil || s.Q == nil {
		return Report{}, fmt.Errorf("report service not configured")
	}
	now := s.now()
	start, end := ResolveRange(period, now, customFrom, customTo)

	key := fmt.Sprintf("rp:%s:%s:%s", period, start.Format("2006-01-02T15"), end.Format("2006-01-02T15"))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	orders, err := s.Q.ListOrdersBetween(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("load orders: %w", err)
	}
	expenses, err := s.Q.ListExpensesBetween(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("load expenses: %w", err)
	}

	report := AggregateAt(orders, expenses, start, end, period, now)
	s.store(ctx, key, report)
	return report, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (Report, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Report{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Report{}, false
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, false
	}
	return report, true
}

func (s *Service) store(ctx context.Context, key string, report Report) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
