package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/groupsplit/internal/user"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

type memUsers map[string]*user.User

func (m memUsers) Create(_ context.Context, u *user.User) (*user.User, error) {
	m[u.Email] = u
	return u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return m[email], nil
}

func newTestService() (*Service, memUsers) {
	users := memUsers{}
	return NewService(users, Bcrypt{Cost: bcrypt.MinCost}, NewJWTManager("test-secret", time.Hour)), users
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	u := &user.User{ID: uuid.New(), Email: "alice@example.com", Role: "admin", Name: "Alice"}

	token, err := m.Generate(u)
	require.NoError(t, err)

	identity, err := m.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), identity.ID)
	assert.Equal(t, u.ID, identity.UserID())
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "admin", identity.Role)
}

func TestJWTRejects(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "alice@example.com", Role: "admin"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("one", time.Hour).Generate(u)
		require.NoError(t, err)
		_, err = NewJWTManager("two", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		m := NewJWTManager("secret", time.Hour)
		m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := m.Generate(u)
		require.NoError(t, err)

		_, err = NewJWTManager("secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "x@example.com"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = NewJWTManager("secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour).Validate("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestBcrypt(t *testing.T) {
	b := Bcrypt{Cost: bcrypt.MinCost}

	hash, err := b.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, b.Compare(hash, "correct horse"))
	assert.False(t, b.Compare(hash, "wrong horse"))

	temp, err := b.Temporary()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{8}$`), temp)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &RegisterRequest{Name: "Alice", Email: " Alice@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, middleware.RoleAdmin, u.Role)
	assert.Equal(t, 1, u.Credits)
	assert.NotEqual(t, "password1", users["alice@example.com"].PasswordHash)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, err = svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, token, err := svc.Login(ctx, &LoginRequest{Email: "ALICE@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	identity, err := svc.Session(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
}

// lateUsers misses the email on lookup but loses the insert, as when another
// registration commits in between.
type lateUsers struct{ memUsers }

func (lateUsers) Create(context.Context, *user.User) (*user.User, error) {
	return nil, user.ErrEmailAlreadyInUse
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	svc := NewService(lateUsers{memUsers{}}, Bcrypt{Cost: bcrypt.MinCost}, NewJWTManager("test-secret", time.Hour))

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "A", Email: "bad", Password: "short"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
}

func TestLoginHandlerSetsSessionCookie(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)

	router := NewHandler(svc, false).Routes()

	body, _ := json.Marshal(LoginRequest{Email: "bob@example.com", Password: "password1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)

	check := httptest.NewRequest(http.MethodPost, "/is-user-logged-in", nil)
	check.AddCookie(session)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, check)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@example.com")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/is-user-logged-in", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
