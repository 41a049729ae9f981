package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/database"
)

const orderColumns = `order_id, user_id, credits, amount, currency, status, payment_id, created_at`

// Repository handles payment order persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.OrderID,
		&o.UserID,
		&o.Credits,
		&o.Amount,
		&o.Currency,
		&o.Status,
		&o.PaymentID,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOrder records an order opened at the gateway
func (r *Repository) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	query := `
		INSERT INTO payment_orders (order_id, user_id, credits, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	created, err := scanOrder(r.db.QueryRowContext(ctx, query,
		o.OrderID,
		o.UserID,
		o.Credits,
		o.Amount,
		o.Currency,
		OrderCreated,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	return created, nil
}

// GetOrder retrieves an order by its gateway id
func (r *Repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE order_id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment order: %w", err)
	}

	return o, nil
}

// CompleteOrder marks an unpaid order as paid and grants its credits to the
// buyer in one transaction. It returns false when the order was already
// paid, so credits are granted at most once per order.
func (r *Repository) CompleteOrder(ctx context.Context, orderID, paymentID string) (bool, error) {
	credited := false
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var userID uuid.UUID
		var credits int
		err := tx.QueryRowContext(ctx, `
			UPDATE payment_orders
			SET status = $3, payment_id = $2
			WHERE order_id = $1 AND status <> $3
			RETURNING user_id, credits
		`, orderID, paymentID, OrderPaid).Scan(&userID, &credits)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET credits = credits + $2, updated_at = NOW() WHERE id = $1`,
			userID, credits,
		); err != nil {
			return fmt.Errorf("failed to add credits: %w", err)
		}

		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return credited, nil
}
