package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// LocationHandlers manages stations, cabinets and vehicles.
type LocationHandlers struct {
	catalogService services.CatalogService
}

func NewLocationHandlers(catalogService services.CatalogService) *LocationHandlers {
	return &LocationHandlers{catalogService: catalogService}
}

// Create handles adding a storage location
func (h *LocationHandlers) Create(c echo.Context) error {
	var req models.Location
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	loc, err := h.catalogService.CreateLocation(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loc)
}

// Get handles reading one location
func (h *LocationHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loc, err := h.catalogService.GetLocation(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loc)
}

// Update handles renaming or re-parenting a location
func (h *LocationHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req models.Location
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = id

	loc, err := h.catalogService.UpdateLocation(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loc)
}

// Deactivate handles soft-deleting a location
func (h *LocationHandlers) Deactivate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.catalogService.DeactivateLocation(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles listing active locations
func (h *LocationHandlers) List(c echo.Context) error {
	var req ListCurrentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	locations, err := h.catalogService.ListLocations(c.Request().Context(), limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": locations,
		"limit":     limit,
		"offset":    offset,
	})
}

// ListChildren handles listing the locations nested under a parent
func (h *LocationHandlers) ListChildren(c echo.Context) error {
	parentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	children, err := h.catalogService.ListChildLocations(c.Request().Context(), parentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": children,
	})
}
