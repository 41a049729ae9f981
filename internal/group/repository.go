package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fkhayef/groupsplit/internal/database"
)

const groupColumns = `id, name, description, thumbnail, admin_email, members_email,
	payment_amount, payment_currency, payment_date, is_paid, created_at`

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*Group, error) {
	g := &Group{}
	var members pq.StringArray
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.Thumbnail,
		&g.AdminEmail,
		&members,
		&g.PaymentStatus.Amount,
		&g.PaymentStatus.Currency,
		&g.PaymentStatus.Date,
		&g.PaymentStatus.IsPaid,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.MembersEmail = []string(members)
	return g, nil
}

func scanGroups(rows *sql.Rows) ([]*Group, error) {
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// CreateWithCredit consumes one of the creator's credits and inserts the
// group in the same transaction. The decrement is conditional, so two
// concurrent creations cannot both spend the last credit.
func (r *Repository) CreateWithCredit(ctx context.Context, creatorEmail string, g *Group) (*Group, error) {
	var created *Group
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var remaining int
		err := tx.QueryRowContext(ctx,
			`UPDATE users SET credits = credits - 1, updated_at = NOW()
			 WHERE email = $1 AND credits > 0
			 RETURNING credits`,
			creatorEmail,
		).Scan(&remaining)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInsufficientCredits
			}
			return fmt.Errorf("failed to consume credit: %w", err)
		}

		query := `
			INSERT INTO groups (id, name, description, thumbnail, admin_email, members_email,
				payment_amount, payment_currency, payment_date, is_paid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING ` + groupColumns

		created, err = scanGroup(tx.QueryRowContext(ctx, query,
			g.ID,
			g.Name,
			g.Description,
			g.Thumbnail,
			g.AdminEmail,
			pq.Array(g.MembersEmail),
			g.PaymentStatus.Amount,
			g.PaymentStatus.Currency,
			g.PaymentStatus.Date,
			g.PaymentStatus.IsPaid,
		))
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return g, nil
}

// ListByMember retrieves the groups an email belongs to
func (r *Repository) ListByMember(ctx context.Context, email string, limit, offset int, order SortOrder) ([]*Group, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM groups WHERE $1 = ANY(members_email)`
	if err := r.db.QueryRowContext(ctx, countQuery, email).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	direction := "DESC"
	if order == SortOldest {
		direction = "ASC"
	}

	query := `
		SELECT ` + groupColumns + `
		FROM groups
		WHERE $1 = ANY(members_email)
		ORDER BY created_at ` + direction + `
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, email, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}

	groups, err := scanGroups(rows)
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// ListByPaymentStatus retrieves the member's groups with the given settle flag
func (r *Repository) ListByPaymentStatus(ctx context.Context, email string, isPaid bool) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups
		WHERE $1 = ANY(members_email) AND is_paid = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email, isPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by status: %w", err)
	}
	return scanGroups(rows)
}

// Update modifies descriptive fields and the admin of a group
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    thumbnail = COALESCE($4, thumbnail),
		    admin_email = COALESCE($5, admin_email)
		WHERE id = $1
		RETURNING ` + groupColumns

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, req.Name, req.Description, req.Thumbnail, req.AdminEmail))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return g, nil
}

// AddMembers appends emails to the member set in one statement, keeping
// first-seen order and collapsing duplicates.
func (r *Repository) AddMembers(ctx context.Context, id uuid.UUID, emails []string) (*Group, error) {
	query := `
		UPDATE groups
		SET members_email = ARRAY(
			SELECT e
			FROM unnest(members_email || $2::text[]) WITH ORDINALITY AS t(e, ord)
			GROUP BY e
			ORDER BY MIN(ord)
		)
		WHERE id = $1
		RETURNING ` + groupColumns

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, pq.Array(emails)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to add members: %w", err)
	}

	return g, nil
}

// RemoveMembers drops emails from the member set in one statement. The
// admin is never removed.
func (r *Repository) RemoveMembers(ctx context.Context, id uuid.UUID, emails []string) (*Group, error) {
	query := `
		UPDATE groups
		SET members_email = ARRAY(
			SELECT e
			FROM unnest(members_email) WITH ORDINALITY AS t(e, ord)
			WHERE e = admin_email OR e <> ALL($2::text[])
			ORDER BY ord
		)
		WHERE id = $1
		RETURNING ` + groupColumns

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, pq.Array(emails)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to remove members: %w", err)
	}

	return g, nil
}

// MarkSettled flips the settle flag, zeroes the amount and stamps the date.
// The currency is left as it was.
func (r *Repository) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (*Group, error) {
	query := `
		UPDATE groups
		SET is_paid = TRUE,
		    payment_amount = 0,
		    payment_date = $2
		WHERE id = $1
		RETURNING ` + groupColumns

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to settle group: %w", err)
	}

	return g, nil
}

// Delete removes a group and, through the foreign key, its expenses
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
