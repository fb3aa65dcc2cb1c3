package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yichen-lab/congee-pos/internal/menu"
	"github.com/yichen-lab/congee-pos/internal/pricing"
)

// MenuRepo implements menu.Store on Postgres.
type MenuRepo struct {
	Pool *pgxpool.Pool
}

// ListCategories returns categories ordered for the register tabs.
func (r MenuRepo) ListCategories(ctx context.Context) ([]menu.Category, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, name, name_alt, sort_order
		FROM categories
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []menu.Category
	for rows.Next() {
		var c menu.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameAlt, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.
func (r MenuRepo) CreateCategory(ctx context.Context, c menu.Category) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO categories (id, name, name_alt, sort_order)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.NameAlt, c.SortOrder)
	return err
}

// UpdateCategory rewrites a category row.
func (r MenuRepo) UpdateCategory(ctx context.Context, c menu.Category) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE categories SET name = $2, name_alt = $3, sort_order = $4
		WHERE id = $1`,
		c.ID, c.Name, c.NameAlt, c.SortOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category; products cascade.
func (r MenuRepo) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// ReorderCategories rewrites sort_order in a single transaction.
func (r MenuRepo) ReorderCategories(ctx context.Context, ids []string) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	for i, id := range ids {
		tag, err := tx.Exec(ctx, `UPDATE categories SET sort_order = $2 WHERE id = $1`, id, i)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("category %s: %w", id, menu.ErrNotFound)
		}
	}
	return tx.Commit(ctx)
}

// ListProducts returns all products.
func (r MenuRepo) ListProducts(ctx context.Context) ([]menu.Product, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, category_id, name, name_alt, price, type, image_url
		FROM products
		ORDER BY category_id, name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []menu.Product
	for rows.Next() {
		var p menu.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.NameAlt, &p.Price, &p.Type, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct loads one product by id.
func (r MenuRepo) GetProduct(ctx context.Context, id string) (menu.Product, error) {
	var p menu.Product
	err := r.Pool.QueryRow(ctx, `
		SELECT id, category_id, name, name_alt, price, type, image_url
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.NameAlt, &p.Price, &p.Type, &p.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.Product{}, menu.ErrNotFound
		}
		return menu.Product{}, err
	}
	return p, nil
}

// CreateProduct inserts a product.
func (r MenuRepo) CreateProduct(ctx context.Context, p menu.Product) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO products (id, category_id, name, name_alt, price, type, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.CategoryID, p.Name, p.NameAlt, p.Price, p.Type, p.ImageURL)
	return err
}

// UpdateProduct rewrites a product row.
func (r MenuRepo) UpdateProduct(ctx context.Context, p menu.Product) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE products
		SET category_id = $2, name = $3, name_alt = $4, price = $5, type = $6, image_url = $7
		WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.NameAlt, p.Price, p.Type, p.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product.
func (r MenuRepo) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// ListModifiers returns all modifiers.
func (r MenuRepo) ListModifiers(ctx context.Context) ([]pricing.Modifier, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, name, name_alt, price, category
		FROM modifiers
		ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("list modifiers: %w", err)
	}
	defer rows.Close()

	var out []pricing.Modifier
	for rows.Next() {
		var m pricing.Modifier
		var category string
		if err := rows.Scan(&m.ID, &m.Name, &m.NameAlt, &m.Price, &category); err != nil {
			return nil, err
		}
		m.Category = pricing.ModifierCategory(category)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateModifier inserts a modifier.
func (r MenuRepo) CreateModifier(ctx context.Context, m pricing.Modifier) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO modifiers (id, name, name_alt, price, category)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.NameAlt, m.Price, string(m.Category))
	return err
}

// UpdateModifier rewrites a modifier row.
func (r MenuRepo) UpdateModifier(ctx context.Context, m pricing.Modifier) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE modifiers SET name = $2, name_alt = $3, price = $4, category = $5
		WHERE id = $1`,
		m.ID, m.Name, m.NameAlt, m.Price, string(m.Category))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// DeleteModifier removes a modifier.
func (r MenuRepo) DeleteModifier(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM modifiers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}
