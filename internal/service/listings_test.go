package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
)

func TestListingService_Create(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	lr := newFakeListingRepo()
	svc := NewListingService(lr, clock.Fixed{T: now})
	seller := uuid.New()

	in := CreateListingInput{
		SellerID:     seller,
		Title:        "Road bike",
		Description:  "54cm frame, recently serviced.",
		Category:     model.CategoryVehicles,
		DurationDays: 14,
	}

	l, err := svc.Create(context.Background(), in, true)
	require.NoError(t, err)
	require.Equal(t, model.ListingActive, l.Status)
	require.Equal(t, now.Add(14*24*time.Hour), l.ClosesAt)
	require.Equal(t, 0, l.EnvelopeCount)
	require.Nil(t, l.WinningEnvelopeID)
}

func TestListingService_Create_RequiresVerifiedEmail(t *testing.T) {
	t.Parallel()
	svc := NewListingService(newFakeListingRepo(), clock.Fixed{T: time.Now()})

	_, err := svc.Create(context.Background(), CreateListingInput{
		SellerID: uuid.New(), Title: "x", Description: "y",
		Category: model.CategoryOther, DurationDays: 7,
	}, false)
	require.ErrorIs(t, err, errs.ErrEmailNotVerified)
}

func TestListingService_Create_Validation(t *testing.T) {
	t.Parallel()
	svc := NewListingService(newFakeListingRepo(), clock.Fixed{T: time.Now()})
	seller := uuid.New()

	base := CreateListingInput{
		SellerID: seller, Title: "Lamp", Description: "Brass, working.",
		Category: model.CategoryHome, DurationDays: 7,
	}

	in := base
	in.Title = "   "
	_, err := svc.Create(context.Background(), in, true)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	in = base
	in.Category = "weapons"
	_, err = svc.Create(context.Background(), in, true)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	in = base
	in.DurationDays = 3
	_, err = svc.Create(context.Background(), in, true)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	in = base
	neg := int64(-1)
	in.MakeMeHappy = &neg
	_, err = svc.Create(context.Background(), in, true)
	require.ErrorIs(t, err, errs.ErrInvalidAmount)
}

func TestListingService_MakeMeHappyIsInert(t *testing.T) {
	t.Parallel()
	// The private target never constrains offers or decisions: a bid far
	// below the target is accepted and can still win.
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	lr := newFakeListingRepo()
	er := newFakeEnvelopeRepo()
	seller := uuid.New()

	target := int64(1_000_000)
	ls := NewListingService(lr, clock.Fixed{T: now})
	l, err := ls.Create(context.Background(), CreateListingInput{
		SellerID: seller, Title: "Painting", Description: "Oil on canvas.",
		Category: model.CategoryArt, DurationDays: 7, MakeMeHappy: &target,
	}, true)
	require.NoError(t, err)

	es := NewEnvelopeService(lr, er, clock.Fixed{T: now.Add(time.Hour)})
	e, err := es.SubmitOrUpdate(context.Background(), l.ID, uuid.New(), 50, "")
	require.NoError(t, err, "low offer accepted regardless of target")

	ds := NewDecisionService(lr, er, clock.Fixed{T: l.ClosesAt.Add(time.Hour)})
	got, err := ds.Decide(context.Background(), l.ID, e.ID, seller)
	require.NoError(t, err, "low offer can win regardless of target")
	require.Equal(t, model.ListingDealInProgress, got.Status)
}
