package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers manages the supply item catalog.
type ItemHandlers struct {
	catalogService services.CatalogService
}

func NewItemHandlers(catalogService services.CatalogService) *ItemHandlers {
	return &ItemHandlers{catalogService: catalogService}
}

// Create handles adding a new item to the catalog
func (h *ItemHandlers) Create(c echo.Context) error {
	var req models.Item
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	item, err := h.catalogService.CreateItem(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Get handles reading one item by id
func (h *ItemHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.catalogService.GetItem(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetByCode handles reading one item by its catalog code
func (h *ItemHandlers) GetByCode(c echo.Context) error {
	item, err := h.catalogService.GetItemByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// Update handles modifying catalog attributes of an item
func (h *ItemHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req models.Item
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = id

	item, err := h.catalogService.UpdateItem(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// Deactivate handles soft-deleting an item
func (h *ItemHandlers) Deactivate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.catalogService.DeactivateItem(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles listing active items
func (h *ItemHandlers) List(c echo.Context) error {
	var req ListCurrentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items, err := h.catalogService.ListItems(c.Request().Context(), limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}
