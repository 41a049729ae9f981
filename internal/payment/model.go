package payment

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses
const (
	OrderCreated = "created"
	OrderPaid    = "paid"
)

// Order is a credit purchase awaiting or past gateway confirmation
type Order struct {
	OrderID   string    `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	Credits   int       `json:"credits"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	PaymentID *string   `json:"payment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreditPrices maps a purchasable credit pack to its price in paise
var CreditPrices = map[int]int64{
	1:  100,
	5:  400,
	10: 700,
}

// planCycles is the number of billing cycles a subscription runs for
var planCycles = map[string]int{
	"monthly": 12,
	"yearly":  1,
}
