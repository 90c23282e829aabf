// Package model defines the domain entities shared by services, repositories
// and handlers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the outcome state of a listing. Temporal openness is not
// a status: it is always derived from ClosesAt at read time.
type ListingStatus string

const (
	ListingActive         ListingStatus = "active"
	ListingNoSale         ListingStatus = "no_sale"
	ListingDealInProgress ListingStatus = "deal_in_progress"
)

// EnvelopeStatus is the state of a buyer's sealed offer. Withdrawn, winner
// and rejected are terminal.
type EnvelopeStatus string

const (
	EnvelopeSubmitted EnvelopeStatus = "submitted"
	EnvelopeWithdrawn EnvelopeStatus = "withdrawn"
	EnvelopeWinner    EnvelopeStatus = "winner"
	EnvelopeRejected  EnvelopeStatus = "rejected"
)

// Categories a listing may be filed under.
const (
	CategoryArt          = "art"
	CategoryCollectibles = "collectibles"
	CategoryFashion      = "fashion"
	CategoryTech         = "tech"
	CategoryHome         = "home"
	CategoryVehicles     = "vehicles"
	CategoryCharity      = "charity"
	CategoryOther        = "other"
)

// Categories lists every valid listing category.
var Categories = []string{
	CategoryArt, CategoryCollectibles, CategoryFashion, CategoryTech,
	CategoryHome, CategoryVehicles, CategoryCharity, CategoryOther,
}

// ValidCategory reports whether c is one of the fixed listing categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Durations a seller may pick when creating a listing, in days.
var DurationOptions = []int{7, 14, 21}

// ValidDuration reports whether d is an allowed listing duration.
func ValidDuration(d int) bool {
	for _, v := range DurationOptions {
		if d == v {
			return true
		}
	}
	return false
}

// Listing is an item published by a seller with a sealed-bid deadline.
type Listing struct {
	ID           uuid.UUID     `json:"id"`
	SellerID     uuid.UUID     `json:"seller_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	DurationDays int           `json:"duration_days"`
	// MakeMeHappy is the seller's private, non-binding target in pence.
	// It is shown back to the seller only and never compared against offers.
	MakeMeHappy        *int64         `json:"make_me_happy,omitempty"`
	ClosesAt           time.Time      `json:"closes_at"`
	Status             ListingStatus  `json:"status"`
	EnvelopeCount      int            `json:"envelope_count"`
	WinningEnvelopeID  *uuid.UUID     `json:"winning_envelope_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Envelope is a buyer's single sealed offer on a listing.
type Envelope struct {
	ID        uuid.UUID      `json:"id"`
	ListingID uuid.UUID      `json:"listing_id"`
	BuyerID   uuid.UUID      `json:"buyer_id"`
	// Amount is in the smallest currency unit (pence).
	Amount    int64          `json:"amount"`
	Message   string         `json:"message,omitempty"`
	Status    EnvelopeStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// User is an account as the engine sees it. Credential handling beyond the
// bcrypt hash lives with the identity layer.
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Deal is the admin view of a decided listing joined to its winning envelope.
type Deal struct {
	ListingID    uuid.UUID `json:"listing_id"`
	Title        string    `json:"title"`
	SellerID     uuid.UUID `json:"seller_id"`
	EnvelopeID   uuid.UUID `json:"envelope_id"`
	BuyerID      uuid.UUID `json:"buyer_id"`
	Amount       int64     `json:"amount"`
	DecidedAt    time.Time `json:"decided_at"`
}
