package handlers

import (
	"net/http"
	"strconv"

	"submission-review-service/internal/adapters/primary/http/dto"
	"submission-review-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unreadOnly", "false"))
	page, size := pageParams(c)

	items, total, err := h.notificationSvc.List(c.Request.Context(), identity(c), unreadOnly, page, size)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	out := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, dto.ToNotificationResponse(n))
	}

	page, size = h.paging.Normalize(page, size)
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{
		Items:    out,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}

func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	n, err := h.notificationSvc.UnreadCount(c.Request.Context(), identity(c))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: n})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := pathUUID(c, "id", domain.ErrInvalidNotificationID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), identity(c), id); err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), identity(c))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarkAllReadResponse{Updated: n})
}
