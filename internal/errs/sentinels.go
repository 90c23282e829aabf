// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Validation failures.
var (
	// ErrInvalidInput indicates a malformed or incomplete request body.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAmount indicates a missing, zero or negative offer amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrMessageTooLong indicates the envelope message exceeds the length bound.
	ErrMessageTooLong = errors.New("message too long")

	// ErrAbusiveContent indicates the envelope message matched the abuse denylist.
	ErrAbusiveContent = errors.New("abusive content")
)

// Permission failures.
var (
	// ErrNotOwner indicates the caller does not own the envelope.
	ErrNotOwner = errors.New("not envelope owner")

	// ErrNotSeller indicates the caller is not the listing's seller.
	ErrNotSeller = errors.New("not listing seller")

	// ErrOwnListing indicates a seller tried to bid on their own listing.
	ErrOwnListing = errors.New("cannot bid on own listing")

	// ErrEmailNotVerified indicates the caller must verify their email first.
	ErrEmailNotVerified = errors.New("email not verified")
)

// State failures.
var (
	// ErrListingClosed indicates the bidding window has passed.
	ErrListingClosed = errors.New("listing closed")

	// ErrListingStillOpen indicates a decision was attempted before the deadline.
	ErrListingStillOpen = errors.New("listing still open")

	// ErrSealed indicates envelopes may not be read before the deadline.
	ErrSealed = errors.New("envelopes sealed until deadline")

	// ErrEnvelopeLocked indicates the envelope is withdrawn or decided and
	// can never be mutated or resubmitted.
	ErrEnvelopeLocked = errors.New("envelope locked")

	// ErrEnvelopeNotEligible indicates the chosen envelope is missing, belongs
	// to another listing, or is not in the submitted state.
	ErrEnvelopeNotEligible = errors.New("envelope not eligible")

	// ErrAlreadyDecided indicates a decision has already been committed for
	// the listing.
	ErrAlreadyDecided = errors.New("listing already decided")
)

// Infrastructure.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDecisionConflict indicates the decision's optimistic guard lost a
	// race. Callers retry once with a fresh read before reporting
	// ErrAlreadyDecided.
	ErrDecisionConflict = errors.New("decision conflict")

	// ErrAlreadyExists indicates a unique constraint violation (e.g. email taken).
	ErrAlreadyExists = errors.New("already exists")
)
