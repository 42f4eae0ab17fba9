package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/services"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unseen-count", h.GetUnseenCount)
	g.POST("/notifications/seen-all", h.MarkAllAsSeen)
	g.POST("/notifications/:id/seen", h.MarkAsSeen)
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, limit := pageParams(c)
	list, total, err := h.notifications.List(c.Request().Context(), getUserIDFromContext(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": list,
		},
		"meta": pageMeta(page, limit, total),
	})
}

// GetGroupedNotifications returns notifications bucketed into today,
// yesterday, this week and older
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	grouped, err := h.notifications.Grouped(c.Request().Context(), getUserIDFromContext(c), time.Now())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, grouped)
}

// GetUnseenCount returns the notification badge count
func (h *NotificationHandler) GetUnseenCount(c echo.Context) error {
	count, err := h.notifications.UnseenCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsSeen acknowledges one notification
func (h *NotificationHandler) MarkAsSeen(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkSeen(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"seen": true})
}

// MarkAllAsSeen acknowledges every notification of the caller
func (h *NotificationHandler) MarkAllAsSeen(c echo.Context) error {
	marked, err := h.notifications.MarkAllSeen(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"marked": marked})
}
