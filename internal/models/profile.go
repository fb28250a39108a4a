package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MailingAddress joins the non-empty address parts on one line.
func (p *Profile) MailingAddress() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Address, p.City, p.State, p.Pincode} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

type WatchlistEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AuctionID uuid.UUID `json:"auction_id"`
	CreatedAt time.Time `json:"created_at"`
	Auction   *Auction  `json:"auction,omitempty"`
}
