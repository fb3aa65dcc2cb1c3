package order

import (
	"context"
	"fmt"
	"time"

	"github.com/yichen-lab/congee-pos/internal/events"
)

// Service exposes order queries and the void operation.
type Service struct {
	Store  Store
	Events *events.Bus
}

// Get loads a single order with its items.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.Store.GetOrder(ctx, id)
}

// List returns orders newest first with the total match count.
func (s *Service) List(ctx context.Context, params ListParams) ([]Order, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, 0, fmt.Errorf("to must not precede from")
	}
	return s.Store.ListOrders(ctx, params)
}

// Void marks an order voided so it no longer counts toward revenue.
func (s *Service) Void(ctx context.Context, id string) error {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == StatusVoided {
		return nil
	}
	if err := s.Store.VoidOrder(ctx, id); err != nil {
		return err
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicOrderVoided, id, map[string]any{
			"total":    o.Total,
			"voidedAt": time.Now().UTC(),
		})
	}
	return nil
}
