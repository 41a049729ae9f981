package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fkhayef/groupsplit/internal/config"
)

// Gateway is the subset of the payment provider API the service needs
type Gateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	CreateSubscription(ctx context.Context, req GatewaySubscriptionRequest) (*GatewaySubscription, error)
}

// GatewayOrderRequest is the body sent when opening an order
type GatewayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// GatewayOrder is the order as returned by the provider
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// GatewaySubscriptionRequest is the body sent when opening a subscription
type GatewaySubscriptionRequest struct {
	PlanID         string `json:"plan_id"`
	TotalCount     int    `json:"total_count"`
	CustomerNotify int    `json:"customer_notify"`
}

// GatewaySubscription is the subscription as returned by the provider
type GatewaySubscription struct {
	ID             string `json:"id"`
	PlanID         string `json:"plan_id"`
	Status         string `json:"status"`
	TotalCount     int    `json:"total_count"`
	PaidCount      int    `json:"paid_count"`
	RemainingCount int    `json:"remaining_count"`
	ShortURL       string `json:"short_url,omitempty"`
}

// RazorpayClient talks to the Razorpay REST API with basic auth
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewRazorpayClient creates a client from the gateway configuration
func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder opens an order for a one-off payment
func (c *RazorpayClient) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	var order GatewayOrder
	if err := c.post(ctx, "/orders", req, &order); err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	return &order, nil
}

// CreateSubscription opens a recurring subscription on a plan
func (c *RazorpayClient) CreateSubscription(ctx context.Context, req GatewaySubscriptionRequest) (*GatewaySubscription, error) {
	var sub GatewaySubscription
	if err := c.post(ctx, "/subscriptions", req, &sub); err != nil {
		return nil, fmt.Errorf("failed to create gateway subscription: %w", err)
	}
	return &sub, nil
}

func (c *RazorpayClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
