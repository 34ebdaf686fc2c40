package handlers

import (
	"submission-review-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	reviewSvc       *services.ReviewService
	querySvc        *services.QueryService
	submissionSvc   *services.SubmissionService
	notificationSvc *services.NotificationService
	paging          services.Paging
}

func New(
	reviewSvc *services.ReviewService,
	querySvc *services.QueryService,
	submissionSvc *services.SubmissionService,
	notificationSvc *services.NotificationService,
	paging services.Paging,
) *Handler {
	return &Handler{
		reviewSvc:       reviewSvc,
		querySvc:        querySvc,
		submissionSvc:   submissionSvc,
		notificationSvc: notificationSvc,
		paging:          paging,
	}
}

// RegisterRoutes mounts the API on r. r must already run the auth
// middleware; every handler reads the caller identity from the context.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Review queue
	r.GET("/review-submissions", h.ListReviewSubmissions)
	r.GET("/review-submissions/counts", h.CountReviewSubmissions)
	r.GET("/review-submissions/:id", h.GetReviewSubmission)
	r.GET("/review-submissions/:id/events", h.ListSubmissionEvents)

	// Review actions
	r.POST("/review-submissions/:id/assign", h.AssignReviewSubmission)
	r.POST("/review-submissions/:id/accept", h.AcceptReviewSubmission)
	r.POST("/review-submissions/:id/reject", h.RejectReviewSubmission)

	// Review log
	r.GET("/review-events", h.ListReviewEvents)

	// Intake
	r.POST("/artifacts", h.SubmitArtifact)
	r.POST("/curator-applications", h.SubmitCuratorApplication)
	r.GET("/submissions/mine", h.ListMySubmissions)

	// Notifications
	r.GET("/notifications", h.ListNotifications)
	r.GET("/notifications/unread-count", h.CountUnreadNotifications)
	r.PUT("/notifications/mark-all-read", h.MarkAllNotificationsRead)
	r.PUT("/notifications/:id/read", h.MarkNotificationRead)
}
