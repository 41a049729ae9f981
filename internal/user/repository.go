package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for a broken UNIQUE constraint
const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, admin_id, credits,
	subscription_id, plan_id, subscription_status, subscription_start, subscription_end,
	last_bill_date, next_bill_date, payments_made, payments_remaining, created_at, updated_at`

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	var (
		subID, planID, status *string
		start, end            *time.Time
		lastBill, nextBill    *time.Time
		made, remaining       int
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.AdminID,
		&u.Credits,
		&subID,
		&planID,
		&status,
		&start,
		&end,
		&lastBill,
		&nextBill,
		&made,
		&remaining,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subID != nil {
		u.Subscription = &Subscription{
			ID:                *subID,
			Start:             start,
			End:               end,
			LastBillDate:      lastBill,
			NextBillDate:      nextBill,
			PaymentsMade:      made,
			PaymentsRemaining: remaining,
		}
		if planID != nil {
			u.Subscription.PlanID = *planID
		}
		if status != nil {
			u.Subscription.Status = *status
		}
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Create inserts a new user. An email taken by a concurrent insert is
// reported as ErrEmailAlreadyInUse. ID must already be set.
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, admin_id, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.AdminID,
		u.Credits,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by their email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// ListByAdmin retrieves the users created by an admin
func (r *Repository) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE admin_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, adminID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE admin_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, adminID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// UpdateManaged changes name or role of a user owned by adminID
func (r *Repository) UpdateManaged(ctx context.Context, id, adminID uuid.UUID, req *UpdateUserRequest) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($3, name),
		    role = COALESCE($4, role),
		    updated_at = NOW()
		WHERE id = $1 AND admin_id = $2
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, adminID, req.Name, req.Role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// DeleteManaged removes a user owned by adminID and reports whether one existed
func (r *Repository) DeleteManaged(ctx context.Context, id, adminID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND admin_id = $2`, id, adminID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// SaveSubscription attaches a freshly created subscription to a user
func (r *Repository) SaveSubscription(ctx context.Context, id uuid.UUID, s *Subscription) (*User, error) {
	query := `
		UPDATE users
		SET subscription_id = $2,
		    plan_id = $3,
		    subscription_status = $4,
		    subscription_start = NULL,
		    subscription_end = NULL,
		    last_bill_date = NULL,
		    next_bill_date = NULL,
		    payments_made = 0,
		    payments_remaining = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, s.ID, s.PlanID, s.Status, s.PaymentsRemaining))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	return u, nil
}

// SubscriptionUpdate carries the fields a gateway event may change. Nil
// fields are left untouched.
type SubscriptionUpdate struct {
	Status            *string
	Start             *time.Time
	End               *time.Time
	LastBillDate      *time.Time
	NextBillDate      *time.Time
	PaymentsMade      *int
	PaymentsRemaining *int
}

// UpdateSubscription applies a gateway event to the user holding subscriptionID
func (r *Repository) UpdateSubscription(ctx context.Context, subscriptionID string, upd SubscriptionUpdate) (bool, error) {
	query := `
		UPDATE users
		SET subscription_status = COALESCE($2, subscription_status),
		    subscription_start = COALESCE($3, subscription_start),
		    subscription_end = COALESCE($4, subscription_end),
		    last_bill_date = COALESCE($5, last_bill_date),
		    next_bill_date = COALESCE($6, next_bill_date),
		    payments_made = COALESCE($7, payments_made),
		    payments_remaining = COALESCE($8, payments_remaining),
		    updated_at = NOW()
		WHERE subscription_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		subscriptionID,
		upd.Status,
		upd.Start,
		upd.End,
		upd.LastBillDate,
		upd.NextBillDate,
		upd.PaymentsMade,
		upd.PaymentsRemaining,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
