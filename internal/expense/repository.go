package expense

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const expenseColumns = `id, group_id, title, description, amount, currency, paid_by, splits,
	created_by, created_at, updated_at`

// Repository handles expense persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	e := &Expense{}
	var splits []byte
	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Title,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&e.PaidBy,
		&splits,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(splits, &e.Splits); err != nil {
		return nil, fmt.Errorf("failed to decode splits of expense %s: %w", e.ID, err)
	}
	return e, nil
}

// Create inserts a validated expense. The row and its splits are one
// statement, so either all of it is stored or none.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	splits, err := json.Marshal(e.Splits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode splits: %w", err)
	}

	query := `
		INSERT INTO expenses (id, group_id, title, description, amount, currency, paid_by, splits, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + expenseColumns

	created, err := scanExpense(r.db.QueryRowContext(ctx, query,
		e.ID,
		e.GroupID,
		e.Title,
		e.Description,
		e.Amount,
		e.Currency,
		e.PaidBy,
		string(splits),
		e.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return created, nil
}

// GetByID retrieves an expense by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// ListByGroup retrieves every expense of a group, newest first. A row whose
// splits cannot be decoded fails the whole listing.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// Update applies the non-nil fields of req
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpdateExpenseRequest) (*Expense, error) {
	var splits *string
	if req.Splits != nil {
		encoded, err := json.Marshal(req.Splits)
		if err != nil {
			return nil, fmt.Errorf("failed to encode splits: %w", err)
		}
		s := string(encoded)
		splits = &s
	}

	query := `
		UPDATE expenses
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    amount = COALESCE($4, amount),
		    currency = COALESCE($5, currency),
		    paid_by = COALESCE($6, paid_by),
		    splits = COALESCE($7::jsonb, splits),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + expenseColumns

	e, err := scanExpense(r.db.QueryRowContext(ctx, query,
		id,
		req.Title,
		req.Description,
		req.Amount,
		req.Currency,
		req.PaidBy,
		splits,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return e, nil
}

// Delete removes an expense, reporting whether it existed
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
