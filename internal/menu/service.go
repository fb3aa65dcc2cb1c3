package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yichen-lab/congee-pos/internal/pricing"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Payload is the full menu snapshot the POS device loads at once.
type Payload struct {
	Categories []Category         `json:"categories"`
	Products   []Product          `json:"products"`
	Modifiers  []pricing.Modifier `json:"modifiers"`
}

// Service orchestrates menu queries, mutations, and caching.
type Service struct {
	store Store
	cache *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store Store
	Cache *Cache
}

// NewService constructs a menu service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("menu: store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache}, nil
}

// Menu returns the full menu snapshot, served from cache when fresh.
func (s *Service) Menu(ctx context.Context) (Payload, error) {
	var cached Payload
	if ok, err := s.cache.Get(ctx, &cached); err == nil && ok {
		return cached, nil
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("list products: %w", err)
	}
	modifiers, err := s.store.ListModifiers(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("list modifiers: %w", err)
	}
	payload := Payload{Categories: categories, Products: products, Modifiers: modifiers}
	_ = s.cache.Set(ctx, payload)
	return payload, nil
}

// ModifierCatalog returns the modifier lookup used by cart pricing.
func (s *Service) ModifierCatalog(ctx context.Context) (pricing.Catalog, error) {
	payload, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.NewCatalog(payload.Modifiers), nil
}

// GetProduct loads a single product, bypassing the cache.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.store.GetProduct(ctx, id)
}

// CreateCategory assigns an id when absent and persists the category.
func (s *Service) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Category{}, fmt.Errorf("category name is required: %w", ErrInvalidInput)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx)
	return c, nil
}

// UpdateCategory persists category changes.
func (s *Service) UpdateCategory(ctx context.Context, c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required: %w", ErrInvalidInput)
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// DeleteCategory removes the category and its products.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// ReorderCategories rewrites sort order to match the provided id sequence.
// Applied atomically so readers never observe a half-applied ordering.
func (s *Service) ReorderCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("ids are required: %w", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return fmt.Errorf("ids must be unique and non-empty: %w", ErrInvalidInput)
		}
		seen[id] = true
	}
	if err := s.store.ReorderCategories(ctx, ids); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// CreateProduct assigns an id when absent and persists the product.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx)
	return p, nil
}

// UpdateProduct persists product changes.
func (s *Service) UpdateProduct(ctx context.Context, p Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// DeleteProduct removes the product. Existing cart lines keep their price
// snapshot, and historical orders are unaffected.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// CreateModifier assigns an id when absent and persists the modifier.
func (s *Service) CreateModifier(ctx context.Context, m pricing.Modifier) (pricing.Modifier, error) {
	if err := validateModifier(m); err != nil {
		return pricing.Modifier{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.store.CreateModifier(ctx, m); err != nil {
		return pricing.Modifier{}, err
	}
	s.cache.Invalidate(ctx)
	return m, nil
}

// UpdateModifier persists modifier changes.
func (s *Service) UpdateModifier(ctx context.Context, m pricing.Modifier) error {
	if err := validateModifier(m); err != nil {
		return err
	}
	if err := s.store.UpdateModifier(ctx, m); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// DeleteModifier removes the modifier. Selections referencing it degrade to
// a zero contribution in the pricing engine.
func (s *Service) DeleteModifier(ctx context.Context, id string) error {
	if err := s.store.DeleteModifier(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if p.CategoryID == "" {
		return fmt.Errorf("product category is required: %w", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("product price must not be negative: %w", ErrInvalidInput)
	}
	return nil
}

func validateModifier(m pricing.Modifier) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("modifier name is required: %w", ErrInvalidInput)
	}
	if m.Price < 0 {
		return fmt.Errorf("modifier price must not be negative: %w", ErrInvalidInput)
	}
	if m.Category != pricing.CategoryOption && m.Category != pricing.CategoryAddon {
		return fmt.Errorf("modifier category must be option or addon: %w", ErrInvalidInput)
	}
	return nil
}
