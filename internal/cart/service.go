package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yichen-lab/congee-pos/internal/menu"
	"github.com/yichen-lab/congee-pos/internal/pricing"
)

// ErrNotFound indicates the requested cart or line could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Line is one priced entry in a cart. BasePrice is snapshotted when the
// line is added so later menu edits do not reprice open orders. UnitTotal
// is recomputed from the modifier selection on every mutation.
type Line struct {
	ID        string            `json:"id"`
	ProductID string            `json:"productId"`
	Name      string            `json:"name"`
	BasePrice pricing.Money     `json:"basePrice"`
	Qty       int               `json:"qty"`
	Modifiers pricing.Selection `json:"modifierIds"`
	UnitTotal pricing.Money     `json:"unitTotal"`
	LineTotal pricing.Money     `json:"lineTotal"`
}

// Cart is a POS ordering session.
type Cart struct {
	ID        string        `json:"id"`
	Lines     []Line        `json:"lines"`
	Total     pricing.Money `json:"total"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// MenuSource provides the product and modifier data carts price against.
type MenuSource interface {
	GetProduct(ctx context.Context, id string) (menu.Product, error)
	ModifierCatalog(ctx context.Context) (pricing.Catalog, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Store *Store
	Menu  MenuSource
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts an empty cart.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	c := Cart{ID: uuid.NewString(), Lines: []Line{}, UpdatedAt: s.now()}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	return s.Store.Load(ctx, id)
}

// AddLine appends a product to the cart with an optional initial modifier
// selection and returns the updated cart.
func (s *Service) AddLine(ctx context.Context, cartID, productID string, qty int, sel pricing.Selection) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	product, err := s.Menu.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			return Cart{}, fmt.Errorf("unknown product %q: %w", productID, ErrInvalidInput)
		}
		return Cart{}, err
	}
	line := Line{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		BasePrice: pricing.Money(product.Price),
		Qty:       qty,
		Modifiers: sel.Clone(),
	}
	c.Lines = append(c.Lines, line)
	return s.reprice(ctx, c)
}

// UpdateQty changes the quantity of a line.
func (s *Service) UpdateQty(ctx context.Context, cartID, lineID string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i, err := findLine(c, lineID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines[i].Qty = qty
	return s.reprice(ctx, c)
}

// ToggleModifier flips a modifier on a line. A present id is removed, an
// absent one is appended, and the line total is recomputed.
func (s *Service) ToggleModifier(ctx context.Context, cartID, lineID, modifierID string) (Cart, error) {
	if modifierID == "" {
		return Cart{}, fmt.Errorf("modifier id required: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i, err := findLine(c, lineID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines[i].Modifiers = c.Lines[i].Modifiers.Toggle(modifierID)
	return s.reprice(ctx, c)
}

// SetModifiers replaces the whole selection of a line.
func (s *Service) SetModifiers(ctx context.Context, cartID, lineID string, sel pricing.Selection) (Cart, error) {
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i, err := findLine(c, lineID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines[i].Modifiers = sel.Clone()
	return s.reprice(ctx, c)
}

// RemoveLine deletes a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i, err := findLine(c, lineID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return s.reprice(ctx, c)
}

// Clear drops the cart entirely.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.Store.Delete(ctx, cartID)
}

// reprice recomputes every line total against the current modifier catalog
// and persists the cart.
func (s *Service) reprice(ctx context.Context, c Cart) (Cart, error) {
	catalog, err := s.Menu.ModifierCatalog(ctx)
	if err != nil {
		return Cart{}, fmt.Errorf("load modifier catalog: %w", err)
	}
	var total pricing.Money
	for i := range c.Lines {
		unit := pricing.ComputeLineTotal(c.Lines[i].BasePrice, c.Lines[i].Modifiers, catalog)
		c.Lines[i].UnitTotal = unit
		c.Lines[i].LineTotal = unit * pricing.Money(c.Lines[i].Qty)
		total += c.Lines[i].LineTotal
	}
	c.Total = total
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func findLine(c Cart, lineID string) (int, error) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %q: %w", lineID, ErrNotFound)
}
