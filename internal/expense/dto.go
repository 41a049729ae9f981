package expense

import "github.com/fkhayef/groupsplit/internal/expense/split"

// CreateExpenseRequest represents the request to create an expense.
// Either splits or splitType with participants must be given.
type CreateExpenseRequest struct {
	GroupID      string             `json:"groupId"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Amount       float64            `json:"amount"`
	Currency     string             `json:"currency,omitempty"`
	PaidBy       string             `json:"paidBy"`
	Splits       []Split            `json:"splits,omitempty"`
	SplitType    string             `json:"splitType,omitempty" enums:"EVEN,PERCENTAGE,EXACT"`
	Participants []split.SplitInput `json:"participants,omitempty"`
}

// UpdateExpenseRequest represents a partial update of an expense
type UpdateExpenseRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	PaidBy      *string  `json:"paidBy,omitempty"`
	Splits      []Split  `json:"splits,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PaidBy      string  `json:"paidBy"`
	Splits      []Split `json:"splits"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	splits := e.Splits
	if splits == nil {
		splits = []Split{}
	}
	return &ExpenseResponse{
		ID:          e.ID.String(),
		GroupID:     e.GroupID.String(),
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		PaidBy:      e.PaidBy,
		Splits:      splits,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   e.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
