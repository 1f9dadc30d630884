package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

// NotificationHandler serves the admin and employee feeds.
type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// AdminFeed handles GET /messages.
//
// @Summary      Admin notification feed
// @Description  Today's clock-ins merged with every clock-out message, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminFeedResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /messages [get]
func (h *NotificationHandler) AdminFeed(c echo.Context) error {
	items, err := h.notifications.ListAdminNotifications(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.AdminNotification{}
	}

	unread := 0
	for _, it := range items {
		if it.Unread {
			unread++
		}
	}
	return c.JSON(http.StatusOK, adminFeedResponse{Items: items, Unread: unread})
}

// EmployeeFeed handles GET /notifications/user.
//
// @Summary      Answered questions of the caller
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  employeeFeedResponse
// @Failure      401  {object}  errorResponse
// @Router       /notifications/user [get]
func (h *NotificationHandler) EmployeeFeed(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	items, err := h.notifications.ListEmployeeNotifications(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.EmployeeNotification{}
	}

	unread := 0
	for _, it := range items {
		if it.Unread {
			unread++
		}
	}
	return c.JSON(http.StatusOK, employeeFeedResponse{Items: items, Unread: unread})
}
