package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// ReorderHandlers exposes the reorder suggestion report and turns accepted
// suggestions into purchase orders.
type ReorderHandlers struct {
	reorderService services.ReorderService
}

func NewReorderHandlers(reorderService services.ReorderService) *ReorderHandlers {
	return &ReorderHandlers{reorderService: reorderService}
}

// SuggestionsRequest represents query parameters for the suggestion report
type SuggestionsRequest struct {
	ItemID   string `query:"item_id"`
	Urgency  string `query:"urgency"`
	Category string `query:"category"`
}

// Suggestions handles computing the reorder report
func (h *ReorderHandlers) Suggestions(c echo.Context) error {
	var req SuggestionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &models.SuggestionFilter{}
	if req.ItemID != "" {
		id, err := common.ValidateUUID(req.ItemID, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.ItemID = &id
	}
	if req.Urgency != "" {
		u := models.Urgency(req.Urgency)
		switch u {
		case models.UrgencyCritical, models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow:
			filter.Urgency = &u
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid urgency")
		}
	}
	if req.Category != "" {
		filter.Category = &req.Category
	}

	suggestions, err := h.reorderService.Suggestions(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// CreateOrdersRequest carries the accepted suggestions to turn into orders
type CreateOrdersRequest struct {
	Suggestions []*models.ReorderSuggestion `json:"suggestions"`
}

// CreateOrders handles converting accepted suggestions into purchase orders
func (h *ReorderHandlers) CreateOrders(c echo.Context) error {
	var req CreateOrdersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Suggestions) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one suggestion is required")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orders, err := h.reorderService.CreatePurchaseOrders(c.Request().Context(), req.Suggestions, actorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"orders": orders,
	})
}
