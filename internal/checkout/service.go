package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yichen-lab/congee-pos/internal/cart"
	"github.com/yichen-lab/congee-pos/internal/events"
	"github.com/yichen-lab/congee-pos/internal/order"
)

// ErrInvalidInput is returned when the checkout payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyCart is returned when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Input is the checkout request.
type Input struct {
	CartID        string `json:"cartId"`
	PaymentMethod string `json:"paymentMethod"`
}

// Output is the checkout result returned to the register.
type Output struct {
	OrderID       string    `json:"orderId"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Service turns a cart into a persisted order.
type Service struct {
	Cart   *cart.Service
	Orders order.Store
	Events *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create finalizes the cart as a completed order. Item prices were frozen
// when each line was added, so no repricing happens here. The cart is
// cleared only after the order is durably written.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Cart == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if in.CartID == "" {
		return Output{}, fmt.Errorf("cartId is required: %w", ErrInvalidInput)
	}
	if !order.ValidPaymentMethod(in.PaymentMethod) {
		return Output{}, fmt.Errorf("payment method must be cash or ewallet: %w", ErrInvalidInput)
	}
	c, err := s.Cart.Get(ctx, in.CartID)
	if err != nil {
		return Output{}, err
	}
	if len(c.Lines) == 0 {
		return Output{}, ErrEmptyCart
	}

	o := order.Order{
		ID:            uuid.NewString(),
		Total:         int64(c.Total),
		PaymentMethod: in.PaymentMethod,
		Status:        order.StatusCompleted,
		CreatedAt:     s.now(),
		Items:         make([]order.Item, 0, len(c.Lines)),
	}
	for _, line := range c.Lines {
		o.Items = append(o.Items, order.Item{
			ID:          uuid.NewString(),
			ProductID:   line.ProductID,
			Name:        line.Name,
			BasePrice:   int64(line.BasePrice),
			Qty:         line.Qty,
			ModifierIDs: append([]string(nil), line.Modifiers...),
			UnitTotal:   int64(line.UnitTotal),
			LineTotal:   int64(line.LineTotal),
		})
	}
	if err := s.Orders.CreateOrder(ctx, o); err != nil {
		return Output{}, fmt.Errorf("persist order: %w", err)
	}

	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, o.ID, map[string]any{
			"total":         o.Total,
			"paymentMethod": o.PaymentMethod,
			"itemCount":     len(o.Items),
		}); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", o.ID).Msg("emit order.created")
		}
	}
	if err := s.Cart.Clear(ctx, in.CartID); err != nil {
		s.Logger.Warn().Err(err).Str("cart_id", in.CartID).Msg("clear cart after checkout")
	}

	return Output{
		OrderID:       o.ID,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	}, nil
}
