package expense

import (
	"time"

	"github.com/google/uuid"
)

// Split is one member's share of an expense
type Split struct {
	MemberEmail string  `json:"memberEmail"`
	AmountOwed  float64 `json:"amountOwed"`
}

// Expense represents an expense logged against a group
type Expense struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaidBy      string    `json:"paid_by"`
	Splits      []Split   `json:"splits"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
