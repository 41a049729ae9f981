package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/pkg/metrics"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotGroupAdmin = errors.New("only group admin can settle the group")
)

// GroupStore reads groups and flips their settle flag
type GroupStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*group.Group, error)
	MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (*group.Group, error)
}

// ExpenseSource yields a group's expense history
type ExpenseSource interface {
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*expense.Expense, error)
}

// Notifier tells members their group was settled
type Notifier interface {
	NotifyGroupSettled(ctx context.Context, recipients []string, groupName string, groupID uuid.UUID) error
}

// Service computes group settlements and runs the settle action
type Service struct {
	groups   GroupStore
	expenses ExpenseSource
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new settlement service
func NewService(groups GroupStore, expenses ExpenseSource, notifier Notifier) *Service {
	return &Service{
		groups:   groups,
		expenses: expenses,
		notifier: notifier,
		now:      time.Now,
	}
}

// GroupSettlement computes who owes whom from the group's current expenses.
// Nothing is cached; each call reads the expenses afresh.
func (s *Service) GroupSettlement(ctx context.Context, groupID uuid.UUID) (map[string]float64, error) {
	expenses, err := s.history(ctx, groupID)
	if err != nil {
		return nil, err
	}

	result, err := Calculate(expenses)
	if err != nil {
		return nil, err
	}
	metrics.SettlementsComputed.Inc()
	return result, nil
}

// GroupSettlementByCurrency is GroupSettlement without mixing currencies
func (s *Service) GroupSettlementByCurrency(ctx context.Context, groupID uuid.UUID) ([]Balance, error) {
	expenses, err := s.history(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := CalculateByCurrency(expenses)
	if err != nil {
		return nil, err
	}
	metrics.SettlementsComputed.Inc()
	return balances, nil
}

// Settle marks the group as paid. Only the group admin may do it. Expenses
// are left untouched, so computed balances do not change.
func (s *Service) Settle(ctx context.Context, groupID uuid.UUID, requester *middleware.Identity) (*group.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	if validation.NormalizeEmail(requester.Email) != g.AdminEmail {
		return nil, ErrNotGroupAdmin
	}

	settled, err := s.groups.MarkSettled(ctx, groupID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if settled == nil {
		return nil, ErrGroupNotFound
	}
	metrics.GroupsSettled.Inc()

	if s.notifier != nil {
		if err := s.notifier.NotifyGroupSettled(ctx, settled.MembersEmail, settled.Name, settled.ID); err != nil {
			slog.WarnContext(ctx, "failed to notify settled group", "group_id", settled.ID, "error", err)
		}
	}
	return settled, nil
}

func (s *Service) history(ctx context.Context, groupID uuid.UUID) ([]*expense.Expense, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return s.expenses.ListByGroup(ctx, groupID)
}
