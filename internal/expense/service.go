package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yichen-lab/congee-pos/internal/events"
	"github.com/yichen-lab/congee-pos/internal/report"
)

// ErrNotFound indicates the requested expense does not exist.
var ErrNotFound = errors.New("expense not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Expense is a recorded cost entry. Kind separates cost of goods from
// operating expenses so the report can break down profit.
type Expense struct {
	ID         string             `json:"id"`
	Kind       report.ExpenseKind `json:"kind"`
	Name       string             `json:"name"`
	Amount     int64              `json:"amount"`
	Note       string             `json:"note,omitempty"`
	RecordedAt time.Time          `json:"recordedAt"`
}

// ListParams filters and pages expense listings.
type ListParams struct {
	From   *time.Time
	To     *time.Time
	Kind   string
	Limit  int
	Offset int
}

// Store abstracts expense persistence.
type Store interface {
	CreateExpense(ctx context.Context, e Expense) error
	GetExpense(ctx context.Context, id string) (Expense, error)
	UpdateExpense(ctx context.Context, e Expense) error
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, params ListParams) ([]Expense, int64, error)
}

// Service encapsulates expense domain operations.
type Service struct {
	Store  Store
	Events *events.Bus
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create validates and records an expense. A missing timestamp defaults to
// the current time.
func (s *Service) Create(ctx context.Context, e Expense) (Expense, error) {
	if err := validate(e); err != nil {
		return Expense{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now()
	}
	if err := s.Store.CreateExpense(ctx, e); err != nil {
		return Expense{}, err
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicExpenseRecorded, e.ID, map[string]any{
			"kind":   e.Kind,
			"amount": e.Amount,
		})
	}
	return e, nil
}

// Get loads a single expense.
func (s *Service) Get(ctx context.Context, id string) (Expense, error) {
	return s.Store.GetExpense(ctx, id)
}

// Update replaces the stored expense fields.
func (s *Service) Update(ctx context.Context, e Expense) error {
	if err := validate(e); err != nil {
		return err
	}
	if e.RecordedAt.IsZero() {
		existing, err := s.Store.GetExpense(ctx, e.ID)
		if err != nil {
			return err
		}
		e.RecordedAt = existing.RecordedAt
	}
	return s.Store.UpdateExpense(ctx, e)
}

// Delete removes the expense.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicExpenseDeleted, id, nil)
	}
	return nil
}

// List returns expenses newest first with the total match count.
func (s *Service) List(ctx context.Context, params ListParams) ([]Expense, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Kind != "" && !validKind(report.ExpenseKind(params.Kind)) {
		return nil, 0, fmt.Errorf("kind must be cogs or opex: %w", ErrInvalidInput)
	}
	return s.Store.ListExpenses(ctx, params)
}

func validate(e Expense) error {
	if !validKind(e.Kind) {
		return fmt.Errorf("kind must be cogs or opex: %w", ErrInvalidInput)
	}
	if e.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrInvalidInput)
	}
	return nil
}

func validKind(kind report.ExpenseKind) bool {
	return kind == report.ExpenseCOGS || kind == report.ExpenseOpEx
}
