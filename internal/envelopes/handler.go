// Package envelopes exposes the sealed-offer HTTP surface: submit, withdraw,
// the buyer's own view, the seller's post-deadline review and the decision.
package envelopes

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/alerts"
	"github.com/sealabid/sealabid/internal/httpx"
	"github.com/sealabid/sealabid/internal/service"
)

type Handler struct {
	envelopes service.EnvelopeService
	decisions service.DecisionService
	notify    *alerts.Notifier
	log       *zap.Logger
}

// NewHandler constructs the envelope handler. notify may be nil when the
// alert worker is disabled.
func NewHandler(
	envelopes service.EnvelopeService,
	decisions service.DecisionService,
	notify *alerts.Notifier,
	log *zap.Logger,
) *Handler {
	return &Handler{envelopes: envelopes, decisions: decisions, notify: notify, log: log}
}

type submitRequest struct {
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// Submit creates or overwrites the caller's envelope on a listing.
func (h *Handler) Submit(c echo.Context) error {
	buyerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	e, err := h.envelopes.SubmitOrUpdate(c.Request().Context(), listingID, buyerID, req.Amount, req.Message)
	if err != nil {
		return httpx.Error(c, err)
	}

	if h.notify != nil {
		if nerr := h.notify.EnvelopeReceipt(c.Request().Context(), e); nerr != nil {
			h.log.Warn("receipt alert not enqueued", zap.Error(nerr))
		}
	}
	return c.JSON(http.StatusOK, e)
}

// GetOwn returns the caller's envelope on a listing.
func (h *Handler) GetOwn(c echo.Context) error {
	buyerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	e, err := h.envelopes.GetOwn(c.Request().Context(), listingID, buyerID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Withdraw retracts the caller's submitted envelope while the listing is
// still open.
func (h *Handler) Withdraw(c echo.Context) error {
	buyerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid envelope id"})
	}

	e, err := h.envelopes.Withdraw(c.Request().Context(), envelopeID, buyerID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// ListForSeller returns every envelope of a listing to its seller once the
// deadline has passed.
func (h *Handler) ListForSeller(c echo.Context) error {
	sellerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	items, err := h.envelopes.ListForSeller(c.Request().Context(), listingID, sellerID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"envelopes": items})
}

type decideRequest struct {
	// EnvelopeID is the chosen winner. Empty means no sale.
	EnvelopeID string `json:"envelope_id"`
}

// Decide closes out the listing: with an envelope_id it accepts that offer
// and rejects the rest, without one it marks the listing no sale.
func (h *Handler) Decide(c echo.Context) error {
	sellerID, ok := callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}

	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.EnvelopeID == "" {
		l, err := h.decisions.MarkNoSale(c.Request().Context(), listingID, sellerID)
		if err != nil {
			return httpx.Error(c, err)
		}
		h.log.Info("listing marked no sale", zap.String("listing_id", listingID.String()))
		if h.notify != nil {
			if nerr := h.notify.NoSale(c.Request().Context(), listingID); nerr != nil {
				h.log.Warn("no sale alerts not enqueued", zap.Error(nerr))
			}
		}
		return c.JSON(http.StatusOK, l)
	}

	envelopeID, err := uuid.Parse(req.EnvelopeID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid envelope id"})
	}

	l, err := h.decisions.Decide(c.Request().Context(), listingID, envelopeID, sellerID)
	if err != nil {
		return httpx.Error(c, err)
	}
	h.log.Info("decision committed",
		zap.String("listing_id", listingID.String()),
		zap.String("envelope_id", envelopeID.String()))
	if h.notify != nil {
		if nerr := h.notify.DecisionMade(c.Request().Context(), listingID); nerr != nil {
			h.log.Warn("decision alerts not enqueued", zap.Error(nerr))
		}
	}
	return c.JSON(http.StatusOK, l)
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
