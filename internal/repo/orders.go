package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yichen-lab/congee-pos/internal/order"
	"github.com/yichen-lab/congee-pos/internal/report"
)

// OrdersRepo implements order.Store and the order side of report.Querier.
type OrdersRepo struct {
	Pool *pgxpool.Pool
}

// CreateOrder writes the order row and its items in one transaction.
func (r OrdersRepo) CreateOrder(ctx context.Context, o order.Order) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, total, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Total, o.PaymentMethod, o.Status, o.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i, item := range o.Items {
		modifierIDs, err := json.Marshal(item.ModifierIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, base_price, qty, modifier_ids, unit_total, line_total, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, o.ID, item.ProductID, item.Name, item.BasePrice, item.Qty, modifierIDs, item.UnitTotal, item.LineTotal, i); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetOrder loads an order with its items.
func (r OrdersRepo) GetOrder(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	err := r.Pool.QueryRow(ctx, `
		SELECT id, total, payment_method, status, created_at
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Total, &o.PaymentMethod, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	items, err := r.listItems(ctx, []string{o.ID})
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListOrders returns orders newest first with the total match count.
func (r OrdersRepo) ListOrders(ctx context.Context, params order.ListParams) ([]order.Order, int64, error) {
	where := "TRUE"
	args := []any{}
	if params.From != nil {
		args = append(args, *params.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM orders WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, total, payment_method, status, created_at
		FROM orders WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []order.Order
	var ids []string
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Total, &o.PaymentMethod, &o.Status, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, total, nil
}

// VoidOrder marks an order voided.
func (r OrdersRepo) VoidOrder(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, order.StatusVoided)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListOrdersBetween returns completed orders in [from, to) shaped for the
// report aggregator. Voided orders are excluded from revenue.
func (r OrdersRepo) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]report.Order, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT o.id, o.total, o.created_at, i.name, i.line_total
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.status = $1 AND o.created_at >= $2 AND o.created_at < $3
		ORDER BY o.created_at, i.position`,
		order.StatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders between: %w", err)
	}
	defer rows.Close()

	var out []report.Order
	index := map[string]int{}
	for rows.Next() {
		var (
			id        string
			total     int64
			createdAt time.Time
			lineName  string
			lineTotal int64
		)
		if err := rows.Scan(&id, &total, &createdAt, &lineName, &lineTotal); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			out = append(out, report.Order{ID: id, Total: total, Timestamp: report.At(createdAt)})
			i = len(out) - 1
			index[id] = i
		}
		out[i].Lines = append(out[i].Lines, report.OrderLine{Name: lineName, Total: lineTotal})
	}
	return out, rows.Err()
}

func (r OrdersRepo) listItems(ctx context.Context, orderIDs []string) (map[string][]order.Item, error) {
	out := make(map[string][]order.Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT order_id, id, product_id, name, base_price, qty, modifier_ids, unit_total, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID     string
			item        order.Item
			modifierIDs []byte
		)
		if err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.Name, &item.BasePrice, &item.Qty, &modifierIDs, &item.UnitTotal, &item.LineTotal); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(modifierIDs, &item.ModifierIDs); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], item)
	}
	return out, rows.Err()
}
