package middleware

import (
	"net/http"

	"github.com/fkhayef/groupsplit/pkg/response"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// Permissions
const (
	PermUserCreate    = "user:create"
	PermUserUpdate    = "user:update"
	PermUserDelete    = "user:delete"
	PermUserView      = "user:view"
	PermGroupCreate   = "group:create"
	PermGroupUpdate   = "group:update"
	PermGroupView     = "group:view"
	PermGroupDelete   = "group:delete"
	PermPaymentCreate = "payment:create"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermUserCreate, PermUserUpdate, PermUserDelete, PermUserView,
		PermGroupCreate, PermGroupUpdate, PermGroupView, PermGroupDelete,
		PermPaymentCreate,
	},
	RoleManager: {PermGroupView, PermGroupUpdate},
	RoleViewer:  {PermGroupView},
}

// ValidRole reports whether role is known
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Allows reports whether role grants permission
func Allows(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Authorize must run after Authenticate.
func Authorize(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized access")
				return
			}
			if !Allows(identity.Role, permission) {
				response.Forbidden(w, "Forbidden: Insufficient Permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
