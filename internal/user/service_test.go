package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/groupsplit/pkg/validation"
)

type memStore struct {
	users map[uuid.UUID]*User
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]*User{}}
}

func (m *memStore) Create(_ context.Context, u *User) (*User, error) {
	cp := *u
	cp.CreatedAt = time.Now()
	m.users[u.ID] = &cp
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	return m.users[id], nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByAdmin(_ context.Context, adminID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.users {
		if u.AdminID != nil && *u.AdminID == adminID {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *memStore) UpdateManaged(_ context.Context, id, adminID uuid.UUID, req *UpdateUserRequest) (*User, error) {
	u := m.users[id]
	if u == nil || u.AdminID == nil || *u.AdminID != adminID {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	return u, nil
}

func (m *memStore) DeleteManaged(_ context.Context, id, adminID uuid.UUID) (bool, error) {
	u := m.users[id]
	if u == nil || u.AdminID == nil || *u.AdminID != adminID {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

type fakePasswords struct{}

func (fakePasswords) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (fakePasswords) Temporary() (string, error)    { return "abcd1234", nil }

func TestCreateManaged(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakePasswords{})
	adminID := uuid.New()

	u, temp, err := svc.CreateManaged(context.Background(), adminID, &CreateUserRequest{
		Name:  " Dana ",
		Email: "Dana@Example.com",
		Role:  "Viewer",
	})
	require.NoError(t, err)

	assert.Equal(t, "abcd1234", temp)
	assert.Equal(t, "dana@example.com", u.Email)
	assert.Equal(t, "Dana", u.Name)
	assert.Equal(t, "viewer", u.Role)
	assert.Equal(t, "hashed:abcd1234", u.PasswordHash)
	require.NotNil(t, u.AdminID)
	assert.Equal(t, adminID, *u.AdminID)

	_, _, err = svc.CreateManaged(context.Background(), adminID, &CreateUserRequest{
		Name:  "Dana Two",
		Email: "dana@example.com",
		Role:  "viewer",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

type lateStore struct{ *memStore }

func (lateStore) Create(context.Context, *User) (*User, error) {
	return nil, ErrEmailAlreadyInUse
}

func TestCreateManagedConcurrentDuplicate(t *testing.T) {
	svc := NewService(lateStore{newMemStore()}, fakePasswords{})

	_, _, err := svc.CreateManaged(context.Background(), uuid.New(), &CreateUserRequest{
		Name:  "Dana",
		Email: "dana@example.com",
		Role:  "viewer",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestCreateManagedReportsAllFieldErrors(t *testing.T) {
	svc := NewService(newMemStore(), fakePasswords{})

	_, _, err := svc.CreateManaged(context.Background(), uuid.New(), &CreateUserRequest{
		Name:  "D",
		Email: "not-an-email",
		Role:  "superuser",
	})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("name"))
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("role"))
}

func TestManagedUsersAreScopedToOwner(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakePasswords{})
	owner, other := uuid.New(), uuid.New()

	u, _, err := svc.CreateManaged(context.Background(), owner, &CreateUserRequest{
		Name: "Eli", Email: "eli@example.com", Role: "manager",
	})
	require.NoError(t, err)

	role := "viewer"
	_, err = svc.UpdateManaged(context.Background(), other, u.ID, &UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err := svc.UpdateManaged(context.Background(), owner, u.ID, &UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "viewer", updated.Role)

	assert.ErrorIs(t, svc.DeleteManaged(context.Background(), other, u.ID), ErrUserNotFound)
	assert.NoError(t, svc.DeleteManaged(context.Background(), owner, u.ID))
	assert.ErrorIs(t, svc.DeleteManaged(context.Background(), owner, u.ID), ErrUserNotFound)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewService(newMemStore(), fakePasswords{})
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
