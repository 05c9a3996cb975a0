package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// ParLevelHandlers manages stocking thresholds.
type ParLevelHandlers struct {
	parLevelService services.ParLevelService
}

func NewParLevelHandlers(parLevelService services.ParLevelService) *ParLevelHandlers {
	return &ParLevelHandlers{parLevelService: parLevelService}
}

// Set handles creating or replacing one par level
func (h *ParLevelHandlers) Set(c echo.Context) error {
	var req models.ParLevel
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	p, err := h.parLevelService.Set(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// BulkSet handles applying thresholds to many item and location combinations
func (h *ParLevelHandlers) BulkSet(c echo.Context) error {
	var req models.BulkParLevelUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	written, err := h.parLevelService.BulkSet(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated": written,
	})
}

// Get handles reading one par level
func (h *ParLevelHandlers) Get(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("locationID"), "location_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.parLevelService.Get(c.Request().Context(), itemID, locationID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListByItem handles listing every par level for an item
func (h *ParLevelHandlers) ListByItem(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	levels, err := h.parLevelService.ListByItem(c.Request().Context(), itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"par_levels": levels,
	})
}

// Delete handles removing one par level
func (h *ParLevelHandlers) Delete(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("locationID"), "location_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.parLevelService.Delete(c.Request().Context(), itemID, locationID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
