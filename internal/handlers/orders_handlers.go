package handlers

import (
	"net/http"

	"stationsupply/internal/common"
	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers manages the purchase order lifecycle.
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// Get handles reading one purchase order with its lines
func (h *OrderHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	po, err := h.orderService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, po)
}

// List handles listing purchase orders, optionally by status
func (h *OrderHandlers) List(c echo.Context) error {
	var req ListCurrentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var status *models.OrderStatus
	if raw := c.QueryParam("status"); raw != "" {
		st := models.OrderStatus(raw)
		if !st.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		}
		status = &st
	}

	orders, err := h.orderService.List(c.Request().Context(), status, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// MarkOrdered handles moving a pending order to ordered
func (h *OrderHandlers) MarkOrdered(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.orderService.MarkOrdered(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReceiveLine handles booking a delivery against one order line
func (h *OrderHandlers) ReceiveLine(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.ReceiveLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	actorID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.PurchaseOrderID = id
	req.ActorID = actorID

	po, err := h.orderService.ReceiveLine(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, po)
}

// Cancel handles cancelling an order that has not been received
func (h *OrderHandlers) Cancel(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.orderService.Cancel(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
