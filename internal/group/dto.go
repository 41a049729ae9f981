package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Description  string   `json:"description,omitempty" validate:"max=500"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	MembersEmail []string `json:"membersEmail,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	GroupID     string  `json:"groupId" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	AdminEmail  *string `json:"adminEmail,omitempty" validate:"omitempty,email"`
}

// MembersRequest adds or removes members by email
type MembersRequest struct {
	GroupID string   `json:"groupId" validate:"required"`
	Emails  []string `json:"emails" validate:"required,min=1"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Thumbnail     string                 `json:"thumbnail"`
	AdminEmail    string                 `json:"adminEmail"`
	MembersEmail  []string               `json:"membersEmail"`
	PaymentStatus *PaymentStatusResponse `json:"paymentStatus"`
	CreatedAt     string                 `json:"createdAt"`
}

// PaymentStatusResponse is the settlement snapshot as sent to clients
type PaymentStatusResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Date     string  `json:"date"`
	IsPaid   bool    `json:"isPaid"`
}

// AuditResponse reports when the group was last settled
type AuditResponse struct {
	LastSettled *string `json:"lastSettled"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	members := g.MembersEmail
	if members == nil {
		members = []string{}
	}
	return &GroupResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		Description:  g.Description,
		Thumbnail:    g.Thumbnail,
		AdminEmail:   g.AdminEmail,
		MembersEmail: members,
		PaymentStatus: &PaymentStatusResponse{
			Amount:   g.PaymentStatus.Amount,
			Currency: g.PaymentStatus.Currency,
			Date:     g.PaymentStatus.Date.UTC().Format(timeLayout),
			IsPaid:   g.PaymentStatus.IsPaid,
		},
		CreatedAt: g.CreatedAt.UTC().Format(timeLayout),
	}
}
