package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator map[string]*Identity

func (s stubAuthenticator) Authenticate(token string) (*Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func protected(t *testing.T, perm string) http.Handler {
	t.Helper()
	authn := stubAuthenticator{
		"admin-token":  {ID: "1", Email: "admin@example.com", Role: RoleAdmin},
		"viewer-token": {ID: "2", Email: "viewer@example.com", Role: RoleViewer},
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		require.True(t, ok)
		w.Write([]byte(identity.Email))
	})
	return Authenticate(authn)(Authorize(perm)(final))
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin-token") },
			wantStatus: http.StatusOK,
			wantBody:   "admin@example.com",
		},
		{
			name: "session cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "admin-token"})
			},
			wantStatus: http.StatusOK,
			wantBody:   "admin@example.com",
		},
		{
			name:       "malformed header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token admin-token") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			protected(t, PermGroupView).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthorizeRejectsMissingPermission(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer viewer-token")
	rec := httptest.NewRecorder()

	protected(t, PermGroupCreate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient Permissions")
}

func TestPermissionTable(t *testing.T) {
	assert.True(t, Allows(RoleAdmin, PermPaymentCreate))
	assert.True(t, Allows(RoleManager, PermGroupUpdate))
	assert.False(t, Allows(RoleManager, PermGroupCreate))
	assert.False(t, Allows(RoleViewer, PermGroupUpdate))
	assert.False(t, Allows("ghost", PermGroupView))
	assert.True(t, ValidRole(RoleViewer))
	assert.False(t, ValidRole("root"))
}
