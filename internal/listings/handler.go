// Package listings exposes the listing HTTP surface: publish, browse, detail
// and the seller's own view.
package listings

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/httpx"
	"github.com/sealabid/sealabid/internal/lifecycle"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
	"github.com/sealabid/sealabid/internal/service"
)

type Handler struct {
	svc service.ListingService
	log *zap.Logger
}

func NewHandler(svc service.ListingService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type createRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	DurationDays int    `json:"duration_days"`
	MakeMeHappy  *int64 `json:"make_me_happy"`
}

// Create publishes a new listing for the authenticated seller.
func (h *Handler) Create(c echo.Context) error {
	sellerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	verified, _ := c.Get("email_verified").(bool)

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	l, err := h.svc.Create(c.Request().Context(), service.CreateListingInput{
		SellerID:     sellerID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		DurationDays: req.DurationDays,
		MakeMeHappy:  req.MakeMeHappy,
	}, verified)
	if err != nil {
		return httpx.Error(c, err)
	}

	h.log.Info("listing published",
		zap.String("listing_id", l.ID.String()),
		zap.String("seller_id", sellerID.String()),
		zap.Time("closes_at", l.ClosesAt))
	return c.JSON(http.StatusCreated, l)
}

// List returns active listings for public browsing, optionally filtered by
// category.
func (h *Handler) List(c echo.Context) error {
	f := repository.ListingFilter{Category: c.QueryParam("category")}
	if err := echo.QueryParamsBinder(c).
		Int("limit", &f.Limit).
		Int("offset", &f.Offset).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pagination params"})
	}

	items, err := h.svc.ListPublic(c.Request().Context(), f)
	if err != nil {
		return httpx.Error(c, err)
	}
	for i := range items {
		redact(&items[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": items})
}

// Get returns one listing. The seller's private target stays hidden unless
// the caller is the seller.
func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	if caller, ok := callerID(c); !ok || caller != l.SellerID {
		redact(l)
	}
	return c.JSON(http.StatusOK, l)
}

// Mine returns the authenticated seller's listings split into still-open and
// ended, private target included.
func (h *Handler) Mine(c echo.Context) error {
	sellerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	items, err := h.svc.ListBySeller(c.Request().Context(), sellerID)
	if err != nil {
		return httpx.Error(c, err)
	}

	now := time.Now()
	active := []model.Listing{}
	ended := []model.Listing{}
	for _, l := range items {
		if lifecycle.IsOpen(&l, now) {
			active = append(active, l)
		} else {
			ended = append(ended, l)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"active": active, "ended": ended})
}

func callerID(c echo.Context) (uuid.UUID, bool) {
	s, _ := c.Get("user_id").(string)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// redact strips the seller-only field from a listing bound for another viewer.
func redact(l *model.Listing) {
	l.MakeMeHappy = nil
}
