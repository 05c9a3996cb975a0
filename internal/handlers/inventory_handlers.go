package handlers

import (
	"context"
	"net/http"
	"time"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles stock reads and every ledger mutation.
type InventoryHandlers struct {
	inventoryService services.InventoryService
	ledgerService    services.LedgerService
}

func NewInventoryHandlers(inventoryService services.InventoryService, ledgerService services.LedgerService) *InventoryHandlers {
	return &InventoryHandlers{
		inventoryService: inventoryService,
		ledgerService:    ledgerService,
	}
}

// ListCurrentRequest represents query parameters for the current stock view
type ListCurrentRequest struct {
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
	BelowPar   bool   `query:"below_par"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// ListCurrent handles listing current stock with optional filters
func (h *InventoryHandlers) ListCurrent(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListCurrentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := &models.InventoryFilter{
		BelowPar: req.BelowPar,
		Limit:    limit,
		Offset:   offset,
	}
	if req.ItemID != "" {
		id, err := common.ValidateUUID(req.ItemID, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.ItemID = &id
	}
	if req.LocationID != "" {
		id, err := common.ValidateUUID(req.LocationID, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.LocationID = &id
	}

	views, err := h.inventoryService.Current(ctx, filter)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"inventory": views,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCurrent handles reading one (item, location) stock record
func (h *InventoryHandlers) GetCurrent(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("itemID"), "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("locationID"), "location_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inv, err := h.inventoryService.GetCurrent(c.Request().Context(), itemID, locationID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

// Receive handles booking new stock into a location
func (h *InventoryHandlers) Receive(c echo.Context) error {
	var req services.ReceiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	movement, err := h.ledgerService.Receive(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, movement)
}

// Transfer handles moving stock between locations
func (h *InventoryHandlers) Transfer(c echo.Context) error {
	var req services.TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	movement, err := h.ledgerService.Transfer(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, movement)
}

// Use handles consuming stock on a call or during operations
func (h *InventoryHandlers) Use(c echo.Context) error {
	return h.consume(c, h.ledgerService.Use)
}

// Dispose handles writing off damaged or expired stock
func (h *InventoryHandlers) Dispose(c echo.Context) error {
	return h.consume(c, h.ledgerService.Dispose)
}

func (h *InventoryHandlers) consume(c echo.Context, op func(ctx context.Context, req *services.ConsumeRequest) (*models.Movement, error)) error {
	var req services.ConsumeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	movement, err := op(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, movement)
}

// AllocationRequest reserves or releases stock for an upcoming incident
type AllocationRequest struct {
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int       `json:"quantity"`
}

// Allocate handles reserving available stock
func (h *InventoryHandlers) Allocate(c echo.Context) error {
	var req AllocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.ledgerService.Allocate(c.Request().Context(), req.ItemID, req.LocationID, req.Quantity); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Release handles returning reserved stock to availability
func (h *InventoryHandlers) Release(c echo.Context) error {
	var req AllocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.ledgerService.Release(c.Request().Context(), req.ItemID, req.LocationID, req.Quantity); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Count handles recording a physical count
func (h *InventoryHandlers) Count(c echo.Context) error {
	var req services.CountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.ActorID = actorID

	result, err := h.ledgerService.Count(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListMovementsRequest represents query parameters for the movement log
type ListMovementsRequest struct {
	ItemID       string `query:"item_id"`
	LocationID   string `query:"location_id"`
	MovementType string `query:"movement_type"`
	StartDate    string `query:"start_date"`
	EndDate      string `query:"end_date"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// ListMovements handles reading the movement log with optional filters
func (h *InventoryHandlers) ListMovements(c echo.Context) error {
	var req ListMovementsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := &models.MovementFilter{Limit: limit, Offset: offset}
	if req.ItemID != "" {
		id, err := common.ValidateUUID(req.ItemID, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.ItemID = &id
	}
	if req.LocationID != "" {
		id, err := common.ValidateUUID(req.LocationID, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.LocationID = &id
	}
	if req.MovementType != "" {
		mt := models.MovementType(req.MovementType)
		if !mt.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid movement_type")
		}
		filter.MovementType = &mt
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
		}
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
		}
		end = end.AddDate(0, 0, 1) // inclusive end day
		filter.EndDate = &end
	}

	movements, err := h.inventoryService.Movements(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"limit":     limit,
		"offset":    offset,
	})
}

// LowStock handles the below-par report
func (h *InventoryHandlers) LowStock(c echo.Context) error {
	limit, offset, err := common.ValidatePaginationParams(0, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	views, err := h.inventoryService.LowStock(c.Request().Context(), limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"inventory": views,
	})
}
