package user

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses reported by the payment gateway
const (
	SubscriptionCreated   = "created"
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionCompleted = "completed"
)

// User represents an account. Users created by an admin carry AdminID.
type User struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         string        `json:"role"`
	AdminID      *uuid.UUID    `json:"admin_id,omitempty"`
	Credits      int           `json:"credits"`
	Subscription *Subscription `json:"subscription,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Subscription is the last known state of a user's recurring plan
type Subscription struct {
	ID                string     `json:"subscription_id"`
	PlanID            string     `json:"plan_id"`
	Status            string     `json:"status"`
	Start             *time.Time `json:"start,omitempty"`
	End               *time.Time `json:"end,omitempty"`
	LastBillDate      *time.Time `json:"last_bill_date,omitempty"`
	NextBillDate      *time.Time `json:"next_bill_date,omitempty"`
	PaymentsMade      int        `json:"payments_made"`
	PaymentsRemaining int        `json:"payments_remaining"`
}
