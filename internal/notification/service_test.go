package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/groupsplit/pkg/middleware"
)

type memStore struct {
	items []*Notification
}

func (m *memStore) CreateMany(_ context.Context, recipients []string, message string, entityType, entityID *string) error {
	for _, r := range recipients {
		m.items = append(m.items, &Notification{
			ID:                uuid.New(),
			RecipientEmail:    r,
			Message:           message,
			RelatedEntityType: entityType,
			RelatedEntityID:   entityID,
			CreatedAt:         time.Now(),
		})
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	for _, n := range m.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByRecipient(_ context.Context, email string, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var all []*Notification
	for _, n := range m.items {
		if n.RecipientEmail == email && (!unreadOnly || !n.IsRead) {
			all = append(all, n)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) MarkAsRead(_ context.Context, id uuid.UUID) error {
	for _, n := range m.items {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memStore) MarkAllAsRead(_ context.Context, email string) error {
	for _, n := range m.items {
		if n.RecipientEmail == email {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memStore) UnreadCount(_ context.Context, email string) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.RecipientEmail == email && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotifyAndRead(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()
	groupID := uuid.New()

	require.NoError(t, svc.NotifyGroupSettled(ctx, []string{"a@example.com", "b@example.com"}, "Trip", groupID))
	require.NoError(t, svc.NotifyExpenseAdded(ctx, []string{"b@example.com"}, "Dinner", 30, "INR", uuid.New()))

	require.Len(t, store.items, 3)
	assert.Equal(t, EntityGroup, *store.items[0].RelatedEntityType)
	assert.Equal(t, groupID.String(), *store.items[0].RelatedEntityID)
	assert.Contains(t, store.items[2].Message, "30.00 INR")

	count, err := svc.UnreadCount(ctx, "B@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, store.items[1].ID, "a@example.com"), ErrNotRecipient)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, uuid.New(), "b@example.com"), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, store.items[1].ID, "b@example.com"))

	unread, total, err := svc.List(ctx, "b@example.com", 1, 20, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.MarkAllAsRead(ctx, "b@example.com"))
	count, err = svc.UnreadCount(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandlerList(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	require.NoError(t, svc.NotifyAddedToGroup(context.Background(), []string{"a@example.com"}, "Trip", uuid.New()))

	req := httptest.NewRequest(http.MethodGet, "/?unread_only=true", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), &middleware.Identity{Email: "a@example.com"}))
	rec := httptest.NewRecorder()
	NewHandler(svc).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have been added to group: Trip")
	assert.Contains(t, rec.Body.String(), `"total":1`)
}
