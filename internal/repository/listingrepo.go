package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/model"
)

// ListingFilter narrows public listing queries.
type ListingFilter struct {
	Category string
	Limit    int
	Offset   int
}

// ListingRepository provides access to the listings collection.
type ListingRepository interface {
	// Create persists a new listing.
	Create(ctx context.Context, l *model.Listing) error

	// Get returns a listing by id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Listing, error)

	// ListPublic returns active listings, newest first.
	ListPublic(ctx context.Context, f ListingFilter) ([]model.Listing, error)

	// ListBySeller returns all listings owned by a seller, newest first.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Listing, error)

	// CommitDecision writes the decision commit record: status moves to
	// deal_in_progress and the winning envelope id is set, conditioned on the
	// listing still being active. A lost guard returns ErrDecisionConflict.
	CommitDecision(ctx context.Context, listingID, winningEnvelopeID uuid.UUID) error

	// CommitNoSale moves an active listing to no_sale under the same guard.
	CommitNoSale(ctx context.Context, listingID uuid.UUID) error
}
