package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
)

var deadline = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEnvelopeFixture(now time.Time) (*EnvelopeServiceImpl, *fakeListingRepo, *fakeEnvelopeRepo) {
	lr := newFakeListingRepo()
	er := newFakeEnvelopeRepo()
	return NewEnvelopeService(lr, er, clock.Fixed{T: now}), lr, er
}

func TestSubmitOrUpdate_CreatesFirstEnvelope(t *testing.T) {
	t.Parallel()
	svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Hour))
	listing := seedListing(lr, uuid.New(), deadline)
	buyer := uuid.New()

	e, err := svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 50000, "happy to collect")
	require.NoError(t, err)
	require.Equal(t, model.EnvelopeSubmitted, e.Status)
	require.Equal(t, int64(50000), e.Amount)

	stored, err := er.GetByListingAndBuyer(context.Background(), listing.ID, buyer)
	require.NoError(t, err)
	require.Equal(t, e.ID, stored.ID)
}

func TestSubmitOrUpdate_OverwritesSubmittedInPlace(t *testing.T) {
	t.Parallel()
	svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Hour))
	listing := seedListing(lr, uuid.New(), deadline)
	buyer := uuid.New()
	orig := seedEnvelope(er, listing.ID, buyer, 40000)

	e, err := svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 60000, "")
	require.NoError(t, err)
	require.Equal(t, orig.ID, e.ID, "amendment must not mint a new envelope")
	require.Equal(t, int64(60000), e.Amount)
	require.Equal(t, model.EnvelopeSubmitted, e.Status)
}

func TestSubmitOrUpdate_SellerCannotBid(t *testing.T) {
	t.Parallel()
	seller := uuid.New()
	svc, lr, _ := newEnvelopeFixture(deadline.Add(-time.Hour))
	listing := seedListing(lr, seller, deadline)

	_, err := svc.SubmitOrUpdate(context.Background(), listing.ID, seller, 10000, "")
	require.ErrorIs(t, err, errs.ErrOwnListing)
}

func TestSubmitOrUpdate_TemporalGate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		now  time.Time
		ok   bool
	}{
		{"before deadline", deadline.Add(-time.Second), true},
		{"at deadline instant", deadline, false},
		{"after deadline", deadline.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, lr, _ := newEnvelopeFixture(tt.now)
			listing := seedListing(lr, uuid.New(), deadline)

			_, err := svc.SubmitOrUpdate(context.Background(), listing.ID, uuid.New(), 10000, "")
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrListingClosed)
			}
		})
	}
}

func TestSubmitOrUpdate_Validation(t *testing.T) {
	t.Parallel()
	svc, lr, _ := newEnvelopeFixture(deadline.Add(-time.Hour))
	listing := seedListing(lr, uuid.New(), deadline)
	buyer := uuid.New()

	_, err := svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 0, "")
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, -5, "")
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 100, strings.Repeat("x", 900))
	require.ErrorIs(t, err, errs.ErrMessageTooLong)

	_, err = svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 100, "pay up or face violence")
	require.ErrorIs(t, err, errs.ErrAbusiveContent)
}

func TestSubmitOrUpdate_NoResurrection(t *testing.T) {
	t.Parallel()
	for _, status := range []model.EnvelopeStatus{
		model.EnvelopeWithdrawn, model.EnvelopeWinner, model.EnvelopeRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Hour))
			listing := seedListing(lr, uuid.New(), deadline)
			buyer := uuid.New()
			e := seedEnvelope(er, listing.ID, buyer, 40000)
			er.byID[e.ID].Status = status

			_, err := svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 50000, "")
			require.ErrorIs(t, err, errs.ErrEnvelopeLocked)
		})
	}
}

func TestWithdraw_OK(t *testing.T) {
	t.Parallel()
	svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Minute))
	listing := seedListing(lr, uuid.New(), deadline)
	buyer := uuid.New()
	e := seedEnvelope(er, listing.ID, buyer, 40000)

	got, err := svc.Withdraw(context.Background(), e.ID, buyer)
	require.NoError(t, err)
	require.Equal(t, model.EnvelopeWithdrawn, got.Status)

	// Terminal: no way back in.
	_, err = svc.SubmitOrUpdate(context.Background(), listing.ID, buyer, 45000, "")
	require.ErrorIs(t, err, errs.ErrEnvelopeLocked)
}

func TestWithdraw_RefusedAfterClose(t *testing.T) {
	t.Parallel()
	svc, lr, er := newEnvelopeFixture(deadline.Add(10 * time.Second))
	listing := seedListing(lr, uuid.New(), deadline)
	buyer := uuid.New()
	e := seedEnvelope(er, listing.ID, buyer, 40000)

	_, err := svc.Withdraw(context.Background(), e.ID, buyer)
	require.ErrorIs(t, err, errs.ErrListingClosed)
}

func TestWithdraw_OnlyOwner(t *testing.T) {
	t.Parallel()
	svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Minute))
	listing := seedListing(lr, uuid.New(), deadline)
	e := seedEnvelope(er, listing.ID, uuid.New(), 40000)

	_, err := svc.Withdraw(context.Background(), e.ID, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotOwner)
}

func TestListForSeller_SealedWhileOpen(t *testing.T) {
	t.Parallel()
	seller := uuid.New()
	svc, lr, er := newEnvelopeFixture(deadline.Add(-time.Minute))
	listing := seedListing(lr, seller, deadline)
	seedEnvelope(er, listing.ID, uuid.New(), 40000)

	_, err := svc.ListForSeller(context.Background(), listing.ID, seller)
	require.ErrorIs(t, err, errs.ErrSealed, "sealing holds even for the seller")
}

func TestListForSeller_AfterClose(t *testing.T) {
	t.Parallel()
	seller := uuid.New()
	svc, lr, er := newEnvelopeFixture(deadline.Add(time.Minute))
	listing := seedListing(lr, seller, deadline)
	seedEnvelope(er, listing.ID, uuid.New(), 40000)
	seedEnvelope(er, listing.ID, uuid.New(), 70000)

	envs, err := svc.ListForSeller(context.Background(), listing.ID, seller)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	require.Equal(t, int64(70000), envs[0].Amount, "highest amount first")

	_, err = svc.ListForSeller(context.Background(), listing.ID, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotSeller)
}

func TestListForSeller_RepairsInterruptedFanout(t *testing.T) {
	t.Parallel()
	seller := uuid.New()
	svc, lr, er := newEnvelopeFixture(deadline.Add(time.Minute))
	listing := seedListing(lr, seller, deadline)
	winner := seedEnvelope(er, listing.ID, uuid.New(), 50000)
	loser := seedEnvelope(er, listing.ID, uuid.New(), 70000)

	// Simulated crash: commit record written, fanout never ran.
	require.NoError(t, lr.CommitDecision(context.Background(), listing.ID, winner.ID))

	envs, err := svc.ListForSeller(context.Background(), listing.ID, seller)
	require.NoError(t, err)
	statuses := map[uuid.UUID]model.EnvelopeStatus{}
	for _, e := range envs {
		statuses[e.ID] = e.Status
	}
	require.Equal(t, model.EnvelopeWinner, statuses[winner.ID])
	require.Equal(t, model.EnvelopeRejected, statuses[loser.ID])
}
