package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// SignatureHeader carries the webhook body signature
const SignatureHeader = "X-Razorpay-Signature"

const maxWebhookBody = 1 << 20

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the payments router. The webhook is public and signed by
// the gateway; everything else goes through authenticate.
func (h *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(middleware.PermPaymentCreate))
		r.Post("/create-order", h.CreateOrder)
		r.Post("/verify-order", h.VerifyOrder)
		r.Post("/create-subscription", h.CreateSubscription)
		r.Post("/capture-subscription", h.CaptureSubscription)
	})

	return r
}

// CreateOrder handles POST /payments/create-order
// @Summary      Buy credits
// @Description  Opens a gateway order for a credit pack of 1, 5 or 10 credits
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Credit pack"
// @Success      201 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /payments/create-order [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, r, "Failed to create order", err)
		return
	}

	response.JSON(w, http.StatusCreated, order)
}

// VerifyOrder handles POST /payments/verify-order
// @Summary      Confirm a credit purchase
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body VerifyOrderRequest true "Checkout callback"
// @Success      200 {object} response.APIResponse{data=user.UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/verify-order [post]
func (h *Handler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req VerifyOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.VerifyOrder(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, r, "Failed to verify order", err)
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

// CreateSubscription handles POST /payments/create-subscription
// @Summary      Start a subscription
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CreateSubscriptionRequest true "Plan"
// @Success      201 {object} response.APIResponse{data=SubscriptionResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /payments/create-subscription [post]
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, r, "Failed to create subscription", err)
		return
	}

	response.JSON(w, http.StatusCreated, sub)
}

// CaptureSubscription handles POST /payments/capture-subscription
// @Summary      Activate a subscription after checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CaptureSubscriptionRequest true "Checkout callback"
// @Success      200 {object} response.APIResponse{data=user.UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/capture-subscription [post]
func (h *Handler) CaptureSubscription(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CaptureSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.CaptureSubscription(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, r, "Failed to capture subscription", err)
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

// Webhook handles POST /payments/webhook
// @Summary      Gateway webhook
// @Description  Subscription lifecycle events signed with the webhook secret
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string true "HMAC-SHA256 of the raw body"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader)); err != nil {
		h.fail(w, r, "Failed to handle webhook", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr)
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrMalformedWebhookEvent):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrSubscriptionNotFound):
		response.NotFound(w, err.Error())
	default:
		response.Internal(w, r, message, err)
	}
}
