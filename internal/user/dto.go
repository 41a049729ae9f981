package user

import "time"

// CreateUserRequest is sent by an admin to create a managed user
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin manager viewer"`
}

// UpdateUserRequest changes a managed user's name or role
type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=admin manager viewer"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Role         string                `json:"role"`
	AdminID      *string               `json:"admin_id,omitempty"`
	Credits      int                   `json:"credits"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	CreatedAt    string                `json:"created_at"`
}

// SubscriptionResponse mirrors Subscription with formatted dates
type SubscriptionResponse struct {
	ID                string  `json:"subscription_id"`
	PlanID            string  `json:"plan_id"`
	Status            string  `json:"status"`
	Start             *string `json:"start,omitempty"`
	End               *string `json:"end,omitempty"`
	NextBillDate      *string `json:"next_bill_date,omitempty"`
	PaymentsMade      int     `json:"payments_made"`
	PaymentsRemaining int     `json:"payments_remaining"`
}

// CreatedUserResponse includes the one-time temporary password
type CreatedUserResponse struct {
	User              *UserResponse `json:"user"`
	TemporaryPassword string        `json:"temporary_password"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Credits:   u.Credits,
		CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
	}
	if u.AdminID != nil {
		adminID := u.AdminID.String()
		resp.AdminID = &adminID
	}
	if s := u.Subscription; s != nil {
		resp.Subscription = &SubscriptionResponse{
			ID:                s.ID,
			PlanID:            s.PlanID,
			Status:            s.Status,
			Start:             formatTime(s.Start),
			End:               formatTime(s.End),
			NextBillDate:      formatTime(s.NextBillDate),
			PaymentsMade:      s.PaymentsMade,
			PaymentsRemaining: s.PaymentsRemaining,
		}
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}
