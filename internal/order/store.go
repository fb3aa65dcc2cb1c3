package order

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order statuses.
const (
	StatusCompleted = "completed"
	StatusVoided    = "voided"
)

// Payment methods accepted at the counter.
const (
	PaymentCash    = "cash"
	PaymentEWallet = "ewallet"
)

// Item is a priced order line frozen at checkout time.
type Item struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	BasePrice   int64    `json:"basePrice"`
	Qty         int      `json:"qty"`
	ModifierIDs []string `json:"modifierIds"`
	UnitTotal   int64    `json:"unitTotal"`
	LineTotal   int64    `json:"lineTotal"`
}

// Order is a completed sale.
type Order struct {
	ID            string    `json:"id"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	Items         []Item    `json:"items"`
}

// ListParams filters and pages order listings.
type ListParams struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Store abstracts order persistence. CreateOrder writes the order and its
// items atomically.
type Store interface {
	CreateOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context, params ListParams) ([]Order, int64, error)
	VoidOrder(ctx context.Context, id string) error
}

// ValidPaymentMethod reports whether the method is accepted.
func ValidPaymentMethod(method string) bool {
	return method == PaymentCash || method == PaymentEWallet
}
