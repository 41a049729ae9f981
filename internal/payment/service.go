package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/config"
	"github.com/fkhayef/groupsplit/internal/user"
	"github.com/fkhayef/groupsplit/pkg/metrics"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrInvalidSignature      = errors.New("invalid transaction")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrMalformedWebhookEvent = errors.New("malformed webhook event")
)

const orderCurrency = "INR"

// Orders is the payment order persistence used by the service
type Orders interface {
	CreateOrder(ctx context.Context, o *Order) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CompleteOrder(ctx context.Context, orderID, paymentID string) (bool, error)
}

// Users is the account persistence used by the service
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	SaveSubscription(ctx context.Context, id uuid.UUID, s *user.Subscription) (*user.User, error)
	UpdateSubscription(ctx context.Context, subscriptionID string, upd user.SubscriptionUpdate) (bool, error)
}

// Service handles credit purchases and subscriptions
type Service struct {
	orders  Orders
	users   Users
	gateway Gateway
	cfg     config.RazorpayConfig
	now     func() time.Time
}

// NewService creates a new payment service with dependencies injected
func NewService(orders Orders, users Users, gateway Gateway, cfg config.RazorpayConfig) *Service {
	return &Service{
		orders:  orders,
		users:   users,
		gateway: gateway,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CreateOrder opens a gateway order for one of the fixed credit packs
func (s *Service) CreateOrder(ctx context.Context, caller *middleware.Identity, req *CreateOrderRequest) (*OrderResponse, error) {
	price, ok := CreditPrices[req.Credits]
	if !ok {
		var c validation.Collector
		c.Add("credits", "purchase one of the credit packs: "+creditPacks())
		return nil, c.Err()
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   price,
		Currency: orderCurrency,
		Receipt:  fmt.Sprintf("receipt_%d", s.now().UnixMilli()),
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, &Order{
		OrderID:  gwOrder.ID,
		UserID:   caller.UserID(),
		Credits:  req.Credits,
		Amount:   price,
		Currency: orderCurrency,
	})
	if err != nil {
		return nil, err
	}

	return order.toResponse(s.cfg.KeyID), nil
}

// VerifyOrder checks the checkout signature and grants the order's credits.
// Verifying an already paid order returns the user unchanged.
func (s *Service) VerifyOrder(ctx context.Context, caller *middleware.Identity, req *VerifyOrderRequest) (*user.User, error) {
	payload := []byte(req.OrderID + "|" + req.PaymentID)
	if !VerifySignature(s.cfg.KeySecret, payload, req.Signature) {
		return nil, ErrInvalidSignature
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != caller.UserID() {
		return nil, ErrOrderNotFound
	}

	credited, err := s.orders.CompleteOrder(ctx, req.OrderID, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if credited {
		metrics.CreditsPurchased.Add(float64(order.Credits))
		slog.InfoContext(ctx, "credits purchased", "user_id", order.UserID, "credits", order.Credits, "order_id", order.OrderID)
	}

	u, err := s.users.GetByID(ctx, caller.UserID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateSubscription opens a gateway subscription on the named plan and
// records it against the caller with status created
func (s *Service) CreateSubscription(ctx context.Context, caller *middleware.Identity, req *CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	name := strings.ToLower(strings.TrimSpace(req.PlanName))
	planID := s.planID(name)
	if planID == "" {
		var c validation.Collector
		c.Add("planName", "must be monthly or yearly")
		return nil, c.Err()
	}

	sub, err := s.gateway.CreateSubscription(ctx, GatewaySubscriptionRequest{
		PlanID:         planID,
		TotalCount:     planCycles[name],
		CustomerNotify: 1,
	})
	if err != nil {
		return nil, err
	}

	remaining := sub.RemainingCount
	if remaining == 0 {
		remaining = planCycles[name]
	}
	u, err := s.users.SaveSubscription(ctx, caller.UserID(), &user.Subscription{
		ID:                sub.ID,
		PlanID:            planID,
		Status:            user.SubscriptionCreated,
		PaymentsRemaining: remaining,
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	return &SubscriptionResponse{
		SubscriptionID: sub.ID,
		PlanID:         planID,
		Status:         user.SubscriptionCreated,
		ShortURL:       sub.ShortURL,
		KeyID:          s.cfg.KeyID,
	}, nil
}

// CaptureSubscription checks the subscription checkout signature and
// activates the caller's subscription
func (s *Service) CaptureSubscription(ctx context.Context, caller *middleware.Identity, req *CaptureSubscriptionRequest) (*user.User, error) {
	payload := []byte(req.PaymentID + "|" + req.SubscriptionID)
	if !VerifySignature(s.cfg.KeySecret, payload, req.Signature) {
		return nil, ErrInvalidSignature
	}

	u, err := s.users.GetByID(ctx, caller.UserID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.Subscription == nil || u.Subscription.ID != req.SubscriptionID {
		return nil, ErrSubscriptionNotFound
	}

	status := user.SubscriptionActive
	if _, err := s.users.UpdateSubscription(ctx, req.SubscriptionID, user.SubscriptionUpdate{Status: &status}); err != nil {
		return nil, err
	}
	u.Subscription.Status = status
	return u, nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
}

type subscriptionEntity struct {
	ID             string `json:"id"`
	StartAt        *int64 `json:"start_at"`
	EndAt          *int64 `json:"end_at"`
	EndedAt        *int64 `json:"ended_at"`
	CurrentStart   *int64 `json:"current_start"`
	ChargeAt       *int64 `json:"charge_at"`
	PaidCount      *int   `json:"paid_count"`
	RemainingCount *int   `json:"remaining_count"`
}

var eventStatuses = map[string]string{
	"subscription.activated": user.SubscriptionActive,
	"subscription.charged":   user.SubscriptionActive,
	"subscription.cancelled": user.SubscriptionCancelled,
	"subscription.completed": user.SubscriptionCompleted,
}

// HandleWebhook verifies a gateway event against the webhook secret and
// applies subscription lifecycle events. Other events are acknowledged and
// ignored.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !VerifySignature(s.cfg.WebhookSecret, body, signature) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedWebhookEvent, err)
	}

	status, ok := eventStatuses[event.Event]
	if !ok {
		slog.DebugContext(ctx, "ignoring webhook event", "event", event.Event)
		return nil
	}

	entity := event.Payload.Subscription.Entity
	if entity.ID == "" {
		return fmt.Errorf("%w: missing subscription id", ErrMalformedWebhookEvent)
	}

	end := entity.EndedAt
	if end == nil {
		end = entity.EndAt
	}
	upd := user.SubscriptionUpdate{
		Status:            &status,
		Start:             unixTime(entity.StartAt),
		End:               unixTime(end),
		LastBillDate:      unixTime(entity.CurrentStart),
		NextBillDate:      unixTime(entity.ChargeAt),
		PaymentsMade:      entity.PaidCount,
		PaymentsRemaining: entity.RemainingCount,
	}

	found, err := s.users.UpdateSubscription(ctx, entity.ID, upd)
	if err != nil {
		return err
	}
	if !found {
		slog.WarnContext(ctx, "webhook for unknown subscription", "event", event.Event, "subscription_id", entity.ID)
	}
	return nil
}

func (s *Service) planID(name string) string {
	switch name {
	case "monthly":
		return s.cfg.MonthlyPlanID
	case "yearly":
		return s.cfg.YearlyPlanID
	}
	return ""
}

func unixTime(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := time.Unix(*sec, 0).UTC()
	return &t
}

func creditPacks() string {
	packs := make([]int, 0, len(CreditPrices))
	for credits := range CreditPrices {
		packs = append(packs, credits)
	}
	sort.Ints(packs)

	names := make([]string, len(packs))
	for i, credits := range packs {
		names[i] = fmt.Sprint(credits)
	}
	return strings.Join(names, ", ")
}
