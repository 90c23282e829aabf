// Package postgres contains PostgreSQL implementations of the repository
// interfaces.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealabid/sealabid/internal/db"
	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
)

// ListingRepo implements repository.ListingRepository.
type ListingRepo struct{ db *db.DB }

// NewListingRepo constructs a listing repository.
func NewListingRepo(d *db.DB) *ListingRepo { return &ListingRepo{db: d} }

const listingColumns = `id, seller_id, title, description, category, duration_days,
 make_me_happy, closes_at, status, envelope_count, winning_envelope_id, created_at, updated_at`

// Create persists a new listing.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	const q = `INSERT INTO listings
 (id, seller_id, title, description, category, duration_days, make_me_happy, closes_at, status, envelope_count, created_at, updated_at)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10,$10)`
	_, err := r.db.Pool.Exec(ctx, q,
		l.ID, l.SellerID, l.Title, l.Description, l.Category, l.DurationDays,
		l.MakeMeHappy, l.ClosesAt, l.Status, l.CreatedAt,
	)
	return err
}

// Get returns a listing by id.
func (r *ListingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// ListPublic returns active listings, newest first.
func (r *ListingRepo) ListPublic(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + listingColumns + ` FROM listings WHERE status = 'active'`
	args := []any{}
	if f.Category != "" {
		q += ` AND category = $1`
		args = append(args, f.Category)
	}
	q += ` ORDER BY created_at DESC`
	if f.Category != "" {
		q += ` LIMIT $2 OFFSET $3`
	} else {
		q += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListBySeller returns every listing owned by the seller, newest first.
func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// CommitDecision is the decision's single linearization point: the status
// move is conditioned on the listing still being active, so exactly one
// concurrent decision can commit.
func (r *ListingRepo) CommitDecision(ctx context.Context, listingID, winningEnvelopeID uuid.UUID) error {
	const q = `UPDATE listings
 SET status = 'deal_in_progress', winning_envelope_id = $2, updated_at = NOW()
 WHERE id = $1 AND status = 'active'`
	tag, err := r.db.Pool.Exec(ctx, q, listingID, winningEnvelopeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrDecisionConflict
	}
	return nil
}

// CommitNoSale moves an active listing to no_sale under the same guard.
func (r *ListingRepo) CommitNoSale(ctx context.Context, listingID uuid.UUID) error {
	const q = `UPDATE listings
 SET status = 'no_sale', updated_at = NOW()
 WHERE id = $1 AND status = 'active'`
	tag, err := r.db.Pool.Exec(ctx, q, listingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrDecisionConflict
	}
	return nil
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Description, &l.Category, &l.DurationDays,
		&l.MakeMeHappy, &l.ClosesAt, &l.Status, &l.EnvelopeCount, &l.WinningEnvelopeID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]model.Listing, error) {
	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
