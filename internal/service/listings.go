// Package service implements the engine's business rules over the
// repositories: listing lifecycle, the envelope ledger and the decision
// transaction.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
)

// CreateListingInput carries the seller's form fields.
type CreateListingInput struct {
	SellerID     uuid.UUID
	Title        string
	Description  string
	Category     string
	DurationDays int
	// MakeMeHappy is the seller's optional private target in pence. Stored,
	// shown back to the seller, and never used by any rule.
	MakeMeHappy *int64
}

// ListingService owns listing creation and the read side.
type ListingService interface {
	Create(ctx context.Context, in CreateListingInput, emailVerified bool) (*model.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	ListPublic(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Listing, error)
}

type ListingServiceImpl struct {
	listings repository.ListingRepository
	clk      clock.Clock
}

// NewListingService constructs a ListingService.
func NewListingService(listings repository.ListingRepository, clk clock.Clock) *ListingServiceImpl {
	return &ListingServiceImpl{listings: listings, clk: clk}
}

// Create validates the form and publishes the listing with
// closes_at = now + duration. Selling requires a verified email.
func (s *ListingServiceImpl) Create(ctx context.Context, in CreateListingInput, emailVerified bool) (*model.Listing, error) {
	if !emailVerified {
		return nil, errs.ErrEmailNotVerified
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, errs.ErrInvalidInput
	}
	if !model.ValidCategory(in.Category) {
		return nil, errs.ErrInvalidInput
	}
	if !model.ValidDuration(in.DurationDays) {
		return nil, errs.ErrInvalidInput
	}
	if in.MakeMeHappy != nil && *in.MakeMeHappy < 0 {
		return nil, errs.ErrInvalidAmount
	}

	now := s.clk.Now()
	l := &model.Listing{
		ID:           uuid.New(),
		SellerID:     in.SellerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		DurationDays: in.DurationDays,
		MakeMeHappy:  in.MakeMeHappy,
		ClosesAt:     now.Add(time.Duration(in.DurationDays) * 24 * time.Hour),
		Status:       model.ListingActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns a listing by id.
func (s *ListingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	return s.listings.Get(ctx, id)
}

// ListPublic returns active listings for browsing.
func (s *ListingServiceImpl) ListPublic(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error) {
	if f.Category != "" && !model.ValidCategory(f.Category) {
		return []model.Listing{}, nil
	}
	return s.listings.ListPublic(ctx, f)
}

// ListBySeller returns all of a seller's own listings.
func (s *ListingServiceImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Listing, error) {
	return s.listings.ListBySeller(ctx, sellerID)
}
