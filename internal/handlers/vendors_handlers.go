package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// VendorHandlers manages vendors and per-item auto-order rules.
type VendorHandlers struct {
	vendorService services.VendorService
}

func NewVendorHandlers(vendorService services.VendorService) *VendorHandlers {
	return &VendorHandlers{vendorService: vendorService}
}

// Create handles adding a vendor
func (h *VendorHandlers) Create(c echo.Context) error {
	var req models.Vendor
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	v, err := h.vendorService.CreateVendor(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Get handles reading one vendor
func (h *VendorHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v, err := h.vendorService.GetVendor(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// Update handles modifying a vendor
func (h *VendorHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req models.Vendor
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = id

	v, err := h.vendorService.UpdateVendor(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// List handles listing vendors
func (h *VendorHandlers) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	vendors, err := h.vendorService.ListVendors(c.Request().Context(), activeOnly)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"vendors": vendors,
	})
}

// SetRule handles creating or replacing an item's auto-order rule
func (h *VendorHandlers) SetRule(c echo.Context) error {
	var req models.AutoOrderRule
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rule, err := h.vendorService.SetRule(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rule)
}

// GetRule handles reading an item's active auto-order rule
func (h *VendorHandlers) GetRule(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rule, err := h.vendorService.GetRule(c.Request().Context(), itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rule)
}

// ListRules handles listing every auto-order rule
func (h *VendorHandlers) ListRules(c echo.Context) error {
	rules, err := h.vendorService.ListRules(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules": rules,
	})
}

// DeleteRule handles removing an item's auto-order rule
func (h *VendorHandlers) DeleteRule(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.vendorService.DeleteRule(c.Request().Context(), itemID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
