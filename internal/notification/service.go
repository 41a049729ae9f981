package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the notification persistence used by the service
type Store interface {
	CreateMany(ctx context.Context, recipients []string, message string, entityType, entityID *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByRecipient(ctx context.Context, email string, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, email string) error
	UnreadCount(ctx context.Context, email string) (int, error)
}

// Service handles notification business logic
type Service struct {
	repo Store
}

// NewService creates a new notification service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// List retrieves a page of the recipient's notifications
func (s *Service) List(ctx context.Context, email string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipient(ctx, validation.NormalizeEmail(email), perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read. Only its recipient may do it.
func (s *Service) MarkAsRead(ctx context.Context, id uuid.UUID, email string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientEmail != validation.NormalizeEmail(email) {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of the recipient's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, email string) error {
	return s.repo.MarkAllAsRead(ctx, validation.NormalizeEmail(email))
}

// UnreadCount returns the recipient's unread count
func (s *Service) UnreadCount(ctx context.Context, email string) (int, error) {
	return s.repo.UnreadCount(ctx, validation.NormalizeEmail(email))
}

// NotifyExpenseAdded tells split members about a new expense
func (s *Service) NotifyExpenseAdded(ctx context.Context, recipients []string, title string, amount float64, currency string, expenseID uuid.UUID) error {
	message := fmt.Sprintf("New expense %q of %.2f %s was added and you have a share in it", title, amount, currency)
	return s.create(ctx, recipients, message, EntityExpense, expenseID)
}

// NotifyGroupSettled tells every member that the group was settled
func (s *Service) NotifyGroupSettled(ctx context.Context, recipients []string, groupName string, groupID uuid.UUID) error {
	return s.create(ctx, recipients, "Group "+groupName+" has been settled", EntityGroup, groupID)
}

// NotifyAddedToGroup tells new members they joined a group
func (s *Service) NotifyAddedToGroup(ctx context.Context, recipients []string, groupName string, groupID uuid.UUID) error {
	return s.create(ctx, recipients, "You have been added to group: "+groupName, EntityGroup, groupID)
}

func (s *Service) create(ctx context.Context, recipients []string, message, entityType string, entityID uuid.UUID) error {
	id := entityID.String()
	return s.repo.CreateMany(ctx, recipients, message, &entityType, &id)
}
