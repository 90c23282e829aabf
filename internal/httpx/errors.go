// Package httpx maps service sentinels onto HTTP responses so every handler
// surfaces the same taxonomy: validation 400, permission 403, missing 404,
// state conflicts 409.
package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sealabid/sealabid/internal/errs"
)

// Error writes the JSON error response for err.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrMessageTooLong),
		errors.Is(err, errs.ErrAbusiveContent):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})

	case errors.Is(err, errs.ErrNotOwner),
		errors.Is(err, errs.ErrNotSeller),
		errors.Is(err, errs.ErrOwnListing),
		errors.Is(err, errs.ErrEmailNotVerified),
		errors.Is(err, errs.ErrSealed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})

	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})

	case errors.Is(err, errs.ErrListingClosed),
		errors.Is(err, errs.ErrListingStillOpen),
		errors.Is(err, errs.ErrEnvelopeLocked),
		errors.Is(err, errs.ErrEnvelopeNotEligible),
		errors.Is(err, errs.ErrAlreadyDecided),
		errors.Is(err, errs.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})

	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
