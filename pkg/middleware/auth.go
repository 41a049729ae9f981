package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// IdentityKey is the context key for the authenticated caller
	IdentityKey ContextKey = "identity"

	// SessionCookie carries the session token for browser clients
	SessionCookie = "jwtToken"
)

// Identity is the verified caller attached to every protected request
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// UserID parses the identity's ID, returning uuid.Nil when it is malformed
func (i *Identity) UserID() uuid.UUID {
	id, err := uuid.Parse(i.ID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Authenticator turns a session token into an identity
type Authenticator interface {
	Authenticate(token string) (*Identity, error)
}

// Authenticate rejects requests without a valid session token. The token is
// read from the Authorization header first and the session cookie second.
func Authenticate(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				response.Unauthorized(w, "Unauthorized access")
				return
			}

			identity, err := authn.Authenticate(token)
			if err != nil || identity == nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// TokenFromRequest extracts a bearer token or the session cookie value
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithIdentity stores the caller in ctx
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity extracts the caller from the request context
func GetIdentity(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*Identity)
	return identity, ok && identity != nil
}
