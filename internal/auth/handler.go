package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service      *Service
	cookieSecure bool
}

// NewHandler creates a new auth handler
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{service: service, cookieSecure: cookieSecure}
}

// Routes returns the router for auth endpoints. None of them require a session.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/is-user-logged-in", h.IsUserLoggedIn)
	r.Post("/logout", h.Logout)

	return r
}

// Register handles POST /auth/register
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration"
// @Success      201 {object} response.APIResponse{data=user.UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), &req)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			response.ValidationFailed(w, verr)
			return
		}
		if errors.Is(err, ErrEmailExists) {
			response.Conflict(w, err.Error())
			return
		}
		response.Internal(w, r, "Failed to register user", err)
		return
	}

	response.JSON(w, http.StatusCreated, u.ToResponse())
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Sets the jwtToken session cookie and returns the token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=LoginResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.Internal(w, r, "Failed to log in", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.service.tokens.TTL()),
	})

	response.JSON(w, http.StatusOK, &LoginResponse{User: u.ToResponse(), Token: token})
}

// IsUserLoggedIn handles POST /auth/is-user-logged-in
// @Summary      Session check
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=middleware.Identity}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/is-user-logged-in [post]
func (h *Handler) IsUserLoggedIn(w http.ResponseWriter, r *http.Request) {
	identity, err := h.service.Session(middleware.TokenFromRequest(r))
	if err != nil {
		response.Unauthorized(w, "Unauthorized access")
		return
	}

	response.JSON(w, http.StatusOK, identity)
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	response.JSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}
