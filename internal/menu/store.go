package menu

import (
	"context"
	"errors"

	"github.com/yichen-lab/congee-pos/internal/pricing"
)

// ErrNotFound indicates the requested menu entity does not exist.
var ErrNotFound = errors.New("menu entity not found")

// Category groups products on the ordering screen. Sort order drives tab
// placement and is rewritten wholesale on reorder.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameAlt   string `json:"nameAlt,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// Product is a sellable menu entry. Price is in whole currency units; the
// type tag only drives display grouping.
type Product struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	NameAlt    string `json:"nameAlt,omitempty"`
	Price      int64  `json:"price"`
	Type       string `json:"type,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// Store abstracts menu persistence.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) error
	UpdateCategory(ctx context.Context, c Category) error
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, ids []string) error

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListModifiers(ctx context.Context) ([]pricing.Modifier, error)
	CreateModifier(ctx context.Context, m pricing.Modifier) error
	UpdateModifier(ctx context.Context, m pricing.Modifier) error
	DeleteModifier(ctx context.Context, id string) error
}
