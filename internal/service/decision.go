package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/lifecycle"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
)

// DecisionService owns the seller's one-time, irreversible decision.
type DecisionService interface {
	// Decide accepts exactly one envelope and rejects every other submitted
	// envelope of the listing.
	Decide(ctx context.Context, listingID, envelopeID, callerID uuid.UUID) (*model.Listing, error)

	// MarkNoSale declines all envelopes; the listing ends without a winner.
	MarkNoSale(ctx context.Context, listingID, callerID uuid.UUID) (*model.Listing, error)

	// RepairFanout replays the envelope fanout for a listing whose commit
	// record is set. Idempotent; used after a crash between commit and fanout.
	RepairFanout(ctx context.Context, listingID uuid.UUID) error
}

type DecisionServiceImpl struct {
	listings  repository.ListingRepository
	envelopes repository.EnvelopeRepository
	clk       clock.Clock
}

// NewDecisionService constructs a DecisionService.
func NewDecisionService(
	listings repository.ListingRepository,
	envelopes repository.EnvelopeRepository,
	clk clock.Clock,
) *DecisionServiceImpl {
	return &DecisionServiceImpl{listings: listings, envelopes: envelopes, clk: clk}
}

// Decide runs the two-phase decision: the listing's status-guarded update is
// the commit record, the envelope fanout follows and is replayable. The
// seller's choice is unconstrained by amount; the engine never ranks offers.
//
// A lost guard is re-read once: if another decision committed the caller gets
// ErrAlreadyDecided, otherwise the commit is retried a single time.
func (s *DecisionServiceImpl) Decide(ctx context.Context, listingID, envelopeID, callerID uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != callerID {
		return nil, errs.ErrNotSeller
	}
	now := s.clk.Now()
	if lifecycle.IsOpen(listing, now) {
		return nil, errs.ErrListingStillOpen
	}
	if listing.Status != model.ListingActive {
		return nil, errs.ErrAlreadyDecided
	}

	chosen, err := s.envelopes.Get(ctx, envelopeID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrEnvelopeNotEligible
		}
		return nil, err
	}
	if chosen.ListingID != listingID || chosen.Status != model.EnvelopeSubmitted {
		return nil, errs.ErrEnvelopeNotEligible
	}

	if err := s.commitWithRetry(ctx, listingID, func(c context.Context) error {
		return s.listings.CommitDecision(c, listingID, envelopeID)
	}); err != nil {
		return nil, err
	}

	if err := s.envelopes.ApplyDecision(ctx, listingID, envelopeID); err != nil {
		// The commit record is durable; the fanout is recoverable via
		// RepairFanout (or lazily on the seller's next envelope read).
		return nil, err
	}
	return s.listings.Get(ctx, listingID)
}

// MarkNoSale ends the listing without a winner. Envelopes stay as they are;
// nothing can mutate them once the listing is no longer active and closed.
func (s *DecisionServiceImpl) MarkNoSale(ctx context.Context, listingID, callerID uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != callerID {
		return nil, errs.ErrNotSeller
	}
	if lifecycle.IsOpen(listing, s.clk.Now()) {
		return nil, errs.ErrListingStillOpen
	}
	if listing.Status != model.ListingActive {
		return nil, errs.ErrAlreadyDecided
	}

	if err := s.commitWithRetry(ctx, listingID, func(c context.Context) error {
		return s.listings.CommitNoSale(c, listingID)
	}); err != nil {
		return nil, err
	}
	return s.listings.Get(ctx, listingID)
}

// RepairFanout replays the envelope fanout when the commit record is set.
func (s *DecisionServiceImpl) RepairFanout(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != model.ListingDealInProgress || listing.WinningEnvelopeID == nil {
		return nil
	}
	return s.envelopes.ApplyDecision(ctx, listingID, *listing.WinningEnvelopeID)
}

// commitWithRetry applies the optimistic commit, retrying exactly once when
// the guard is lost while the listing still reads as active. A loss against
// a decided listing, or a second loss, surfaces as ErrAlreadyDecided.
func (s *DecisionServiceImpl) commitWithRetry(ctx context.Context, listingID uuid.UUID, commit func(context.Context) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := commit(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrDecisionConflict) {
			return err
		}
		fresh, rerr := s.listings.Get(ctx, listingID)
		if rerr != nil {
			return rerr
		}
		if fresh.Status != model.ListingActive {
			return errs.ErrAlreadyDecided
		}
	}
	return errs.ErrAlreadyDecided
}
