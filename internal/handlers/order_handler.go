package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// OrderHandler handles checkout and order tracking
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orderService}
}

// RegisterOrderRoutes registers order routes. admin guards delivery updates.
func (h *OrderHandler) RegisterOrderRoutes(g *echo.Group, admin echo.MiddlewareFunc) {
	g.POST("/orders/checkout", h.Checkout)
	g.GET("/orders", h.GetOrders)
	g.GET("/orders/last", h.GetLastOrder)
	g.GET("/orders/:id", h.GetOrder)
	g.POST("/orders/:id/cancel", h.CancelOrder)
	g.PUT("/orders/:id/delivery-status", h.UpdateDeliveryStatus, admin)
}

// Checkout places an order from the caller's cart and selected address
func (h *OrderHandler) Checkout(c echo.Context) error {
	var req models.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Checkout(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, order)
}

// GetOrders lists the caller's orders, newest first
func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"orders": orders})
}

// GetLastOrder returns the caller's most recent order
func (h *OrderHandler) GetLastOrder(c echo.Context) error {
	order, err := h.orders.Last(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, order)
}

// GetOrder returns one of the caller's orders
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, order)
}

// CancelOrder cancels one of the caller's undelivered orders
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Cancel(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, order)
}

// UpdateDeliveryStatus moves an order forward along the delivery ladder
func (h *OrderHandler) UpdateDeliveryStatus(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.DeliveryStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.orders.AdvanceDelivery(c.Request().Context(), id, req.DeliveryStatus)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, order)
}
