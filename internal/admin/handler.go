// Package admin exposes the operator's read-only views: platform stats, the
// full listing table, concluded deals and the user roster. Every route sits
// behind the admin role.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/db"
	"github.com/sealabid/sealabid/internal/model"
)

type Handler struct {
	db  *db.DB
	log *zap.Logger
}

func NewHandler(database *db.DB, log *zap.Logger) *Handler {
	return &Handler{db: database, log: log}
}

// Stats returns platform-wide counters.
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var users, listings, active, envelopes, deals, noSales int
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&listings)
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE status = 'active'`).Scan(&active)
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM envelopes`).Scan(&envelopes)
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE status = 'deal_in_progress'`).Scan(&deals)
	_ = h.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE status = 'no_sale'`).Scan(&noSales)

	return c.JSON(http.StatusOK, echo.Map{
		"users":            users,
		"listings":         listings,
		"active_listings":  active,
		"envelopes":        envelopes,
		"deals":            deals,
		"no_sale_listings": noSales,
	})
}

// ListListings returns every listing regardless of status, newest first.
func (h *Handler) ListListings(c echo.Context) error {
	rows, err := h.db.Pool.Query(c.Request().Context(),
		`SELECT id, seller_id, title, description, category, duration_days,
		        make_me_happy, closes_at, status, envelope_count,
		        winning_envelope_id, created_at, updated_at
		 FROM listings ORDER BY created_at DESC`,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch listings"})
	}
	defer rows.Close()

	var items []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ID, &l.SellerID, &l.Title, &l.Description, &l.Category, &l.DurationDays,
			&l.MakeMeHappy, &l.ClosesAt, &l.Status, &l.EnvelopeCount,
			&l.WinningEnvelopeID, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read listing record"})
		}
		items = append(items, l)
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": items})
}

// ListDeals returns every decided listing joined to its winning envelope.
func (h *Handler) ListDeals(c echo.Context) error {
	rows, err := h.db.Pool.Query(c.Request().Context(),
		`SELECT l.id, l.title, l.seller_id, e.id, e.buyer_id, e.amount, l.updated_at
		 FROM listings l JOIN envelopes e ON e.id = l.winning_envelope_id
		 WHERE l.status = 'deal_in_progress'
		 ORDER BY l.updated_at DESC`,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch deals"})
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var d model.Deal
		if err := rows.Scan(
			&d.ListingID, &d.Title, &d.SellerID, &d.EnvelopeID, &d.BuyerID, &d.Amount, &d.DecidedAt,
		); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read deal record"})
		}
		deals = append(deals, d)
	}
	return c.JSON(http.StatusOK, echo.Map{"deals": deals})
}

// ListUsers returns the user roster without credential material.
func (h *Handler) ListUsers(c echo.Context) error {
	rows, err := h.db.Pool.Query(c.Request().Context(),
		`SELECT id, name, email, role, email_verified, created_at
		 FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.EmailVerified, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read user record"})
		}
		users = append(users, u)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
