package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LotHandlers handles the tag-level view of tracked stock.
type LotHandlers struct {
	lotService services.LotService
}

func NewLotHandlers(lotService services.LotService) *LotHandlers {
	return &LotHandlers{lotService: lotService}
}

// Register handles registering one tagged unit
func (h *LotHandlers) Register(c echo.Context) error {
	var req services.RegisterLotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	lot, err := h.lotService.RegisterLot(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, lot)
}

// BulkRegister handles registering a delivery batch in one receipt
func (h *LotHandlers) BulkRegister(c echo.Context) error {
	var req services.BulkRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	tags, movement, err := h.lotService.BulkRegister(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"tags":     tags,
		"movement": movement,
	})
}

// GetByTag handles looking one lot up by its physical tag
func (h *LotHandlers) GetByTag(c echo.Context) error {
	tag := c.Param("tag")
	lot, err := h.lotService.GetByTag(c.Request().Context(), tag)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lot)
}

// ListExpiringRequest represents query parameters for the expiring report
type ListExpiringRequest struct {
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
	WindowDays int    `query:"window_days"`
}

// ListExpiring handles the expiring-lots report, soonest first
func (h *LotHandlers) ListExpiring(c echo.Context) error {
	var req ListExpiringRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.WindowDays <= 0 {
		req.WindowDays = 30
	}

	var itemID, locationID *uuid.UUID
	if req.ItemID != "" {
		id, err := common.ValidateUUID(req.ItemID, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		itemID = &id
	}
	if req.LocationID != "" {
		id, err := common.ValidateUUID(req.LocationID, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		locationID = &id
	}

	lots := make([]*models.ExpiringLot, 0)
	for lot, err := range h.lotService.ExpiringLots(c.Request().Context(), itemID, locationID, req.WindowDays) {
		if err != nil {
			return httpError(err)
		}
		lots = append(lots, lot)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lots":        lots,
		"window_days": req.WindowDays,
	})
}

// ListExpired handles listing live lots already past expiration
func (h *LotHandlers) ListExpired(c echo.Context) error {
	var locationID *uuid.UUID
	if raw := c.QueryParam("location_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		locationID = &id
	}

	lots, err := h.lotService.ExpiredLots(c.Request().Context(), locationID, 1000, 0)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"lots": lots,
	})
}

// DisposeExpired handles retiring every expired live lot with disposal movements
func (h *LotHandlers) DisposeExpired(c echo.Context) error {
	var locationID *uuid.UUID
	if raw := c.QueryParam("location_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		locationID = &id
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	disposed, err := h.lotService.DisposeExpired(c.Request().Context(), locationID, actorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"disposed": disposed,
	})
}
