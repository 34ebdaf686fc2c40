package dto

import (
	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
)

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID uuid.UUID `json:"related_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt string    `json:"created_at"`
	ReadAt    *string   `json:"read_at"`
}

type ListNotificationsResponse struct {
	Items    []NotificationResponse `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
		ReadAt:    formatTimePtr(n.ReadAt),
	}
}
