package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/lifecycle"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
	"github.com/sealabid/sealabid/internal/screen"
)

// EnvelopeService owns the buyer side of the ledger plus the seller's
// post-deadline view.
type EnvelopeService interface {
	// SubmitOrUpdate creates the buyer's envelope or overwrites their still
	// submitted one.
	SubmitOrUpdate(ctx context.Context, listingID, buyerID uuid.UUID, amount int64, message string) (*model.Envelope, error)

	// Withdraw retracts the caller's submitted envelope while the listing is
	// open. Terminal; the buyer cannot re-enter.
	Withdraw(ctx context.Context, envelopeID, callerID uuid.UUID) (*model.Envelope, error)

	// GetOwn returns the caller's envelope on a listing.
	GetOwn(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Envelope, error)

	// ListForSeller returns all envelopes of a listing to its seller, refused
	// with ErrSealed before the deadline.
	ListForSeller(ctx context.Context, listingID, callerID uuid.UUID) ([]model.Envelope, error)
}

type EnvelopeServiceImpl struct {
	listings  repository.ListingRepository
	envelopes repository.EnvelopeRepository
	clk       clock.Clock
}

// NewEnvelopeService constructs an EnvelopeService.
func NewEnvelopeService(
	listings repository.ListingRepository,
	envelopes repository.EnvelopeRepository,
	clk clock.Clock,
) *EnvelopeServiceImpl {
	return &EnvelopeServiceImpl{listings: listings, envelopes: envelopes, clk: clk}
}

// SubmitOrUpdate validates against the listing's temporal state and applies
// the buyer's offer. A withdrawn or decided envelope blocks re-entry for
// good: without that, a buyer could withdraw to peek-and-retry around the
// sealing rule.
func (s *EnvelopeServiceImpl) SubmitOrUpdate(
	ctx context.Context, listingID, buyerID uuid.UUID, amount int64, message string,
) (*model.Envelope, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, errs.ErrOwnListing
	}
	now := s.clk.Now()
	if !lifecycle.IsOpen(listing, now) {
		return nil, errs.ErrListingClosed
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	message = strings.TrimSpace(message)
	if err := screen.CheckMessage(message); err != nil {
		return nil, err
	}

	existing, err := s.envelopes.GetByListingAndBuyer(ctx, listingID, buyerID)
	switch {
	case err == nil:
		if existing.Status != model.EnvelopeSubmitted {
			return nil, errs.ErrEnvelopeLocked
		}
		if err := s.envelopes.UpdateSubmitted(ctx, existing.ID, amount, message); err != nil {
			return nil, err
		}
		existing.Amount = amount
		existing.Message = message
		existing.UpdatedAt = now
		return existing, nil

	case errors.Is(err, errs.ErrNotFound):
		e := &model.Envelope{
			ID:        uuid.New(),
			ListingID: listingID,
			BuyerID:   buyerID,
			Amount:    amount,
			Message:   message,
			Status:    model.EnvelopeSubmitted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.envelopes.Create(ctx, e); err != nil {
			// Two first-submissions from the same buyer raced; the unique
			// constraint serialized them. Fall through to the update path
			// with a fresh read: same actor, last write wins.
			if errors.Is(err, errs.ErrAlreadyExists) {
				return s.applyToExisting(ctx, listingID, buyerID, amount, message)
			}
			return nil, err
		}
		return e, nil

	default:
		return nil, err
	}
}

func (s *EnvelopeServiceImpl) applyToExisting(
	ctx context.Context, listingID, buyerID uuid.UUID, amount int64, message string,
) (*model.Envelope, error) {
	existing, err := s.envelopes.GetByListingAndBuyer(ctx, listingID, buyerID)
	if err != nil {
		return nil, err
	}
	if existing.Status != model.EnvelopeSubmitted {
		return nil, errs.ErrEnvelopeLocked
	}
	if err := s.envelopes.UpdateSubmitted(ctx, existing.ID, amount, message); err != nil {
		return nil, err
	}
	existing.Amount = amount
	existing.Message = message
	return existing, nil
}

// Withdraw retracts a submitted envelope before the deadline. After closure
// withdrawal is refused so a losing-but-decided offer cannot be retroactively
// removed from the seller's reviewed set.
func (s *EnvelopeServiceImpl) Withdraw(ctx context.Context, envelopeID, callerID uuid.UUID) (*model.Envelope, error) {
	e, err := s.envelopes.Get(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if e.BuyerID != callerID {
		return nil, errs.ErrNotOwner
	}
	listing, err := s.listings.Get(ctx, e.ListingID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsOpen(listing, s.clk.Now()) {
		return nil, errs.ErrListingClosed
	}
	if e.Status != model.EnvelopeSubmitted {
		return nil, errs.ErrEnvelopeLocked
	}
	if err := s.envelopes.Withdraw(ctx, e.ID); err != nil {
		return nil, err
	}
	e.Status = model.EnvelopeWithdrawn
	return e, nil
}

// GetOwn returns the caller's envelope on a listing; a buyer always may read
// their own offer.
func (s *EnvelopeServiceImpl) GetOwn(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Envelope, error) {
	return s.envelopes.GetByListingAndBuyer(ctx, listingID, buyerID)
}

// ListForSeller enforces sealing: before the deadline nobody reads envelope
// contents, the seller included. After the deadline the seller gets the full
// set, highest amount first. If a previous decision committed but its fanout
// was interrupted, the fanout is replayed here before returning, so the
// seller never reviews a half-applied decision.
func (s *EnvelopeServiceImpl) ListForSeller(ctx context.Context, listingID, callerID uuid.UUID) ([]model.Envelope, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != callerID {
		return nil, errs.ErrNotSeller
	}
	if lifecycle.IsOpen(listing, s.clk.Now()) {
		return nil, errs.ErrSealed
	}

	if listing.Status == model.ListingDealInProgress && listing.WinningEnvelopeID != nil {
		if err := s.envelopes.ApplyDecision(ctx, listingID, *listing.WinningEnvelopeID); err != nil {
			return nil, err
		}
	}
	return s.envelopes.ListByListing(ctx, listingID)
}
