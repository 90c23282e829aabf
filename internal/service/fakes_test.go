package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
)

// In-memory repositories mimicking the SQL guard semantics of the postgres
// implementations, including the status-conditioned decision commit.

type fakeListingRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.Listing
	onCommit func() // runs inside CommitDecision before the guard, for race tests
}

var _ repository.ListingRepository = (*fakeListingRepo)(nil)

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{byID: map[uuid.UUID]*model.Listing{}}
}

func (f *fakeListingRepo) Create(_ context.Context, l *model.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) Get(_ context.Context, id uuid.UUID) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepo) ListPublic(_ context.Context, _ repository.ListingFilter) ([]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Listing
	for _, l := range f.byID {
		if l.Status == model.ListingActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Listing
	for _, l := range f.byID {
		if l.SellerID == sellerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) CommitDecision(_ context.Context, listingID, winningEnvelopeID uuid.UUID) error {
	if f.onCommit != nil {
		f.onCommit()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[listingID]
	if !ok || l.Status != model.ListingActive {
		return errs.ErrDecisionConflict
	}
	id := winningEnvelopeID
	l.Status = model.ListingDealInProgress
	l.WinningEnvelopeID = &id
	return nil
}

func (f *fakeListingRepo) CommitNoSale(_ context.Context, listingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[listingID]
	if !ok || l.Status != model.ListingActive {
		return errs.ErrDecisionConflict
	}
	l.Status = model.ListingNoSale
	return nil
}

type fakeEnvelopeRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Envelope
}

var _ repository.EnvelopeRepository = (*fakeEnvelopeRepo)(nil)

func newFakeEnvelopeRepo() *fakeEnvelopeRepo {
	return &fakeEnvelopeRepo{byID: map[uuid.UUID]*model.Envelope{}}
}

func (f *fakeEnvelopeRepo) Create(_ context.Context, e *model.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.ListingID == e.ListingID && other.BuyerID == e.BuyerID {
			return errs.ErrAlreadyExists
		}
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEnvelopeRepo) UpdateSubmitted(_ context.Context, id uuid.UUID, amount int64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok || e.Status != model.EnvelopeSubmitted {
		return errs.ErrEnvelopeLocked
	}
	e.Amount = amount
	e.Message = message
	return nil
}

func (f *fakeEnvelopeRepo) Withdraw(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok || e.Status != model.EnvelopeSubmitted {
		return errs.ErrEnvelopeLocked
	}
	e.Status = model.EnvelopeWithdrawn
	return nil
}

func (f *fakeEnvelopeRepo) Get(_ context.Context, id uuid.UUID) (*model.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnvelopeRepo) GetByListingAndBuyer(_ context.Context, listingID, buyerID uuid.UUID) (*model.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.ListingID == listingID && e.BuyerID == buyerID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeEnvelopeRepo) ListByListing(_ context.Context, listingID uuid.UUID) ([]model.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Envelope
	for _, e := range f.byID {
		if e.ListingID == listingID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out, nil
}

func (f *fakeEnvelopeRepo) ApplyDecision(_ context.Context, listingID, winnerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.ListingID != listingID || e.Status != model.EnvelopeSubmitted {
			continue
		}
		if e.ID == winnerID {
			e.Status = model.EnvelopeWinner
		} else {
			e.Status = model.EnvelopeRejected
		}
	}
	return nil
}

// seedListing adds an active listing closing at closesAt and returns it.
func seedListing(repo *fakeListingRepo, sellerID uuid.UUID, closesAt time.Time) *model.Listing {
	l := &model.Listing{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Title:        "Framed print",
		Description:  "Limited run of 50.",
		Category:     model.CategoryArt,
		DurationDays: 7,
		ClosesAt:     closesAt,
		Status:       model.ListingActive,
	}
	_ = repo.Create(context.Background(), l)
	return l
}

// seedEnvelope adds a submitted envelope for buyerID and returns it.
func seedEnvelope(repo *fakeEnvelopeRepo, listingID, buyerID uuid.UUID, amount int64) *model.Envelope {
	e := &model.Envelope{
		ID:        uuid.New(),
		ListingID: listingID,
		BuyerID:   buyerID,
		Amount:    amount,
		Status:    model.EnvelopeSubmitted,
	}
	_ = repo.Create(context.Background(), e)
	return e
}
