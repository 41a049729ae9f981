package group

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the group's last settlement snapshot, not a ledger
type PaymentStatus struct {
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
	IsPaid   bool      `json:"is_paid"`
}

// Group represents a group of members sharing expenses
type Group struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Thumbnail     string        `json:"thumbnail"`
	AdminEmail    string        `json:"admin_email"`
	MembersEmail  []string      `json:"members_email"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// HasMember reports whether email belongs to the group
func (g *Group) HasMember(email string) bool {
	for _, m := range g.MembersEmail {
		if m == email {
			return true
		}
	}
	return false
}

// SortOrder controls listing order by creation time
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)
