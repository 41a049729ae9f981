package expense

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/pkg/metrics"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrGroupNotFound   = errors.New("group not found")
)

// Store is the expense persistence used by the service
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Groups looks up the group an expense belongs to
type Groups interface {
	GetByID(ctx context.Context, id uuid.UUID) (*group.Group, error)
}

// Notifier tells split members about a new expense
type Notifier interface {
	NotifyExpenseAdded(ctx context.Context, recipients []string, title string, amount float64, currency string, expenseID uuid.UUID) error
}

// Service is the group ledger: expense CRUD scoped to a group
type Service struct {
	repo      Store
	groups    Groups
	validator *Validator
	notifier  Notifier
}

// NewService creates a new expense service with dependencies injected
func NewService(repo Store, groups Groups, validator *Validator, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		groups:    groups,
		validator: validator,
		notifier:  notifier,
	}
}

// Create validates and stores an expense for an existing group
func (s *Service) Create(ctx context.Context, caller *middleware.Identity, req *CreateExpenseRequest) (*Expense, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}

	groupID := uuid.MustParse(req.GroupID)
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	createdBy := validation.NormalizeEmail(caller.Email)
	e, err := s.repo.Create(ctx, &Expense{
		ID:          uuid.New(),
		GroupID:     groupID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		PaidBy:      req.PaidBy,
		Splits:      req.Splits,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, err
	}
	metrics.ExpensesCreated.Inc()

	s.notify(ctx, e, createdBy)
	return e, nil
}

// ListByGroup returns every expense of a group, newest first
func (s *Service) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// GetByID retrieves a single expense
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// Update validates and applies a partial update. When only one of paidBy
// and splits is sent, the other is read from the stored expense so the
// payer always stays a split member.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateExpenseRequest) (*Expense, error) {
	if err := s.validator.ValidateUpdate(req); err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}

	if (req.PaidBy == nil) != (req.Splits == nil) {
		stored, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrExpenseNotFound
		}
		if err := s.validator.ValidateUpdateAgainst(stored, req); err != nil {
			metrics.ValidationFailures.Inc()
			return nil, err
		}
	}

	e, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// Delete removes an expense and reports whether it existed
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireGroup(ctx context.Context, id uuid.UUID) error {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Service) notify(ctx context.Context, e *Expense, createdBy string) {
	if s.notifier == nil {
		return
	}

	var recipients []string
	seen := map[string]bool{createdBy: true}
	for _, sp := range e.Splits {
		if !seen[sp.MemberEmail] {
			seen[sp.MemberEmail] = true
			recipients = append(recipients, sp.MemberEmail)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if err := s.notifier.NotifyExpenseAdded(ctx, recipients, e.Title, e.Amount, e.Currency, e.ID); err != nil {
		slog.WarnContext(ctx, "failed to notify split members", "expense_id", e.ID, "error", err)
	}
}
