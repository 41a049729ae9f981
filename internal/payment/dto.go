package payment

// CreateOrderRequest asks for a credit pack
type CreateOrderRequest struct {
	Credits int `json:"credits"`
}

// OrderResponse carries what the checkout widget needs
type OrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Credits  int    `json:"credits"`
	KeyID    string `json:"key_id"`
}

// VerifyOrderRequest is the checkout callback forwarded by the client
type VerifyOrderRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CreateSubscriptionRequest selects a plan by name
type CreateSubscriptionRequest struct {
	PlanName string `json:"planName"`
}

// SubscriptionResponse is the subscription the client completes checkout for
type SubscriptionResponse struct {
	SubscriptionID string `json:"subscription_id"`
	PlanID         string `json:"plan_id"`
	Status         string `json:"status"`
	ShortURL       string `json:"short_url,omitempty"`
	KeyID          string `json:"key_id"`
}

// CaptureSubscriptionRequest is the subscription checkout callback
type CaptureSubscriptionRequest struct {
	PaymentID      string `json:"razorpay_payment_id"`
	SubscriptionID string `json:"razorpay_subscription_id"`
	Signature      string `json:"razorpay_signature"`
}

func (o *Order) toResponse(keyID string) *OrderResponse {
	return &OrderResponse{
		OrderID:  o.OrderID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Credits:  o.Credits,
		KeyID:    keyID,
	}
}
