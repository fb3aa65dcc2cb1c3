package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yichen-lab/congee-pos/internal/expense"
	"github.com/yichen-lab/congee-pos/internal/report"
)

// ExpensesRepo implements expense.Store and the expense side of report.Querier.
type ExpensesRepo struct {
	Pool *pgxpool.Pool
}

// CreateExpense inserts an expense row.
func (r ExpensesRepo) CreateExpense(ctx context.Context, e expense.Expense) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO expenses (id, kind, name, amount, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Kind), e.Name, e.Amount, e.Note, e.RecordedAt)
	return err
}

// GetExpense loads one expense by id.
func (r ExpensesRepo) GetExpense(ctx context.Context, id string) (expense.Expense, error) {
	var (
		e    expense.Expense
		kind string
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT id, kind, name, amount, note, recorded_at
		FROM expenses WHERE id = $1`, id).
		Scan(&e.ID, &kind, &e.Name, &e.Amount, &e.Note, &e.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}
	e.Kind = report.ExpenseKind(kind)
	return e, nil
}

// UpdateExpense rewrites an expense row.
func (r ExpensesRepo) UpdateExpense(ctx context.Context, e expense.Expense) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE expenses SET kind = $2, name = $3, amount = $4, note = $5, recorded_at = $6
		WHERE id = $1`,
		e.ID, string(e.Kind), e.Name, e.Amount, e.Note, e.RecordedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}

// DeleteExpense removes an expense row.
func (r ExpensesRepo) DeleteExpense(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}

// ListExpenses returns expenses newest first with the total match count.
func (r ExpensesRepo) ListExpenses(ctx context.Context, params expense.ListParams) ([]expense.Expense, int64, error) {
	where := "TRUE"
	args := []any{}
	if params.Kind != "" {
		args = append(args, params.Kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where += fmt.Sprintf(" AND recorded_at < $%d", len(args))
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, kind, name, amount, note, recorded_at
		FROM expenses WHERE %s
		ORDER BY recorded_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []expense.Expense
	for rows.Next() {
		var (
			e    expense.Expense
			kind string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Name, &e.Amount, &e.Note, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		e.Kind = report.ExpenseKind(kind)
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ListExpensesBetween returns expenses in [from, to) shaped for the report
// aggregator.
func (r ExpensesRepo) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]report.Expense, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, kind, amount, recorded_at
		FROM expenses
		WHERE recorded_at >= $1 AND recorded_at < $2
		ORDER BY recorded_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses between: %w", err)
	}
	defer rows.Close()

	var out []report.Expense
	for rows.Next() {
		var (
			e          report.Expense
			kind       string
			recordedAt time.Time
		)
		if err := rows.Scan(&e.ID, &kind, &e.Amount, &recordedAt); err != nil {
			return nil, err
		}
		e.Kind = report.ExpenseKind(kind)
		e.Timestamp = report.At(recordedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
