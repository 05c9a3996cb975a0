package handlers

import (
	"errors"
	"net/http"

	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// httpError maps the service error taxonomy onto HTTP status codes. Unknown
// errors become opaque 500s so storage details never leak to clients.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrSameLocation),
		errors.Is(err, services.ErrTransferRestricted),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, models.ErrNegativeThreshold),
		errors.Is(err, models.ErrReorderAbovePar),
		errors.Is(err, models.ErrParAboveMax):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateTag), errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvariantViolation):
		return echo.NewHTTPError(http.StatusInternalServerError, "inventory state inconsistency detected")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "operation failed")
	}
}
