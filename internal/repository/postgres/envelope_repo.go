package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealabid/sealabid/internal/db"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
)

// EnvelopeRepo implements repository.EnvelopeRepository.
type EnvelopeRepo struct{ db *db.DB }

// NewEnvelopeRepo constructs an envelope repository.
func NewEnvelopeRepo(d *db.DB) *EnvelopeRepo { return &EnvelopeRepo{db: d} }

const envelopeColumns = `id, listing_id, buyer_id, amount, message, status, created_at, updated_at`

// Create inserts a submitted envelope and bumps the listing's informational
// envelope_count in one transaction. The count is never consulted by
// business rules, but it should not drift from the insert either.
func (r *EnvelopeRepo) Create(ctx context.Context, e *model.Envelope) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ins = `INSERT INTO envelopes
 (id, listing_id, buyer_id, amount, message, status, created_at, updated_at)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`
	if _, err = tx.Exec(ctx, ins,
		e.ID, e.ListingID, e.BuyerID, e.Amount, e.Message, e.Status, e.CreatedAt,
	); err != nil {
		if db.IsUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}

	const bump = `UPDATE listings SET envelope_count = envelope_count + 1, updated_at = NOW() WHERE id = $1`
	if _, err = tx.Exec(ctx, bump, e.ListingID); err != nil {
		return err
	}
	return nil
}

// UpdateSubmitted overwrites amount/message while the envelope is still
// submitted. The status condition keeps decided and withdrawn envelopes
// immutable at the store level, not just in service checks.
func (r *EnvelopeRepo) UpdateSubmitted(ctx context.Context, id uuid.UUID, amount int64, message string) error {
	const q = `UPDATE envelopes SET amount = $2, message = $3, updated_at = NOW()
 WHERE id = $1 AND status = 'submitted'`
	tag, err := r.db.Pool.Exec(ctx, q, id, amount, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrEnvelopeLocked
	}
	return nil
}

// Withdraw moves a submitted envelope to withdrawn.
func (r *EnvelopeRepo) Withdraw(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE envelopes SET status = 'withdrawn', updated_at = NOW()
 WHERE id = $1 AND status = 'submitted'`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrEnvelopeLocked
	}
	return nil
}

// Get returns an envelope by id.
func (r *EnvelopeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Envelope, error) {
	const q = `SELECT ` + envelopeColumns + ` FROM envelopes WHERE id = $1`
	return r.one(ctx, q, id)
}

// GetByListingAndBuyer returns the buyer's envelope on a listing.
func (r *EnvelopeRepo) GetByListingAndBuyer(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Envelope, error) {
	const q = `SELECT ` + envelopeColumns + ` FROM envelopes WHERE listing_id = $1 AND buyer_id = $2`
	return r.one(ctx, q, listingID, buyerID)
}

// ListByListing returns every envelope of a listing, highest amount first.
func (r *EnvelopeRepo) ListByListing(ctx context.Context, listingID uuid.UUID) ([]model.Envelope, error) {
	const q = `SELECT ` + envelopeColumns + ` FROM envelopes WHERE listing_id = $1 ORDER BY amount DESC`
	rows, err := r.db.Pool.Query(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Envelope
	for rows.Next() {
		var e model.Envelope
		if err := rows.Scan(
			&e.ID, &e.ListingID, &e.BuyerID, &e.Amount, &e.Message, &e.Status,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyDecision is the fanout half of the decision. Both statements key on
// status = 'submitted', so replaying after a crash converges on the same
// terminal states without double-processing.
func (r *EnvelopeRepo) ApplyDecision(ctx context.Context, listingID, winnerID uuid.UUID) error {
	const win = `UPDATE envelopes SET status = 'winner', updated_at = NOW()
 WHERE id = $1 AND listing_id = $2 AND status = 'submitted'`
	if _, err := r.db.Pool.Exec(ctx, win, winnerID, listingID); err != nil {
		return err
	}

	const lose = `UPDATE envelopes SET status = 'rejected', updated_at = NOW()
 WHERE listing_id = $1 AND id <> $2 AND status = 'submitted'`
	if _, err := r.db.Pool.Exec(ctx, lose, listingID, winnerID); err != nil {
		return err
	}
	return nil
}

func (r *EnvelopeRepo) one(ctx context.Context, q string, args ...any) (*model.Envelope, error) {
	row := r.db.Pool.QueryRow(ctx, q, args...)
	var e model.Envelope
	err := row.Scan(
		&e.ID, &e.ListingID, &e.BuyerID, &e.Amount, &e.Message, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
