package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/model"
)

// EnvelopeRepository provides access to the envelopes collection.
type EnvelopeRepository interface {
	// Create inserts a new submitted envelope and bumps the listing's
	// denormalized envelope_count in the same transaction. A duplicate
	// (listing, buyer) pair returns ErrAlreadyExists.
	Create(ctx context.Context, e *model.Envelope) error

	// UpdateSubmitted overwrites amount and message of an envelope that is
	// still submitted. A decided or withdrawn envelope returns
	// ErrEnvelopeLocked.
	UpdateSubmitted(ctx context.Context, id uuid.UUID, amount int64, message string) error

	// Withdraw moves a submitted envelope to withdrawn. A decided or already
	// withdrawn envelope returns ErrEnvelopeLocked.
	Withdraw(ctx context.Context, id uuid.UUID) error

	// Get returns an envelope by id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Envelope, error)

	// GetByListingAndBuyer returns the buyer's envelope on a listing or
	// ErrNotFound. A buyer holds at most one.
	GetByListingAndBuyer(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Envelope, error)

	// ListByListing returns every envelope of a listing, highest amount first.
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]model.Envelope, error)

	// ApplyDecision performs the idempotent fanout: the winning envelope moves
	// submitted -> winner and every other submitted envelope of the listing
	// moves to rejected. Safe to replay; already-terminal envelopes are
	// untouched.
	ApplyDecision(ctx context.Context, listingID, winnerID uuid.UUID) error
}
