package handlers

import (
	"errors"
	"io"
	"net/http"

	"submission-review-service/internal/adapters/primary/http/dto"
	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListReviewSubmissions(c *gin.Context) {
	kind, err := domain.ParseKind(c.Query("kind"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	status, err := domain.ParseStatus(c.Query("status"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	page, size := pageParams(c)

	result, err := h.querySvc.ListByStatus(c.Request.Context(), identity(c), services.ReviewQuery{
		Kind:   kind,
		Status: status,
		Search: c.Query("search"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		log.WithError(err).Error("list review submissions failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ReviewItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.ToReviewItemResponse(item))
	}

	c.JSON(http.StatusOK, dto.ListReviewSubmissionsResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (h *Handler) CountReviewSubmissions(c *gin.Context) {
	kind, err := domain.ParseKind(c.Query("kind"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	counts, err := h.querySvc.CountsByStatus(c.Request.Context(), kind, c.Query("search"))
	if err != nil {
		log.WithError(err).Error("count review submissions failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusCountsResponse(counts))
}

func (h *Handler) GetReviewSubmission(c *gin.Context) {
	id, err := pathUUID(c, "id", domain.ErrInvalidSubmissionID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	sub, err := h.submissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionResponse(sub))
}

func (h *Handler) ListSubmissionEvents(c *gin.Context) {
	id, err := pathUUID(c, "id", domain.ErrInvalidSubmissionID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	events, err := h.reviewSvc.History(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ReviewEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.ToReviewEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AssignReviewSubmission(c *gin.Context) {
	id, err := pathUUID(c, "id", domain.ErrInvalidSubmissionID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	sub, err := h.reviewSvc.Claim(c.Request.Context(), identity(c), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionResponse(sub))
}

func (h *Handler) AcceptReviewSubmission(c *gin.Context) {
	h.decide(c, domain.StatusAccepted)
}

func (h *Handler) RejectReviewSubmission(c *gin.Context) {
	h.decide(c, domain.StatusRejected)
}

func (h *Handler) decide(c *gin.Context, outcome domain.Status) {
	id, err := pathUUID(c, "id", domain.ErrInvalidSubmissionID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	// The body is optional: accept normally sends none.
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	reviewer := identity(c)
	sub, err := h.reviewSvc.Decide(c.Request.Context(), reviewer, id, outcome, req.Reason)
	if err != nil {
		if !domain.IsValidation(err) {
			log.WithError(err).WithFields(log.Fields{
				"submission_id": id,
				"reviewer_id":   reviewer.ID,
				"outcome":       outcome,
			}).Warn("review decision failed")
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionResponse(sub))
}

func (h *Handler) ListReviewEvents(c *gin.Context) {
	kind, err := domain.ParseKind(c.Query("kind"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	page, size := pageParams(c)

	events, total, err := h.querySvc.RecentDecisions(c.Request.Context(), kind, page, size)
	if err != nil {
		log.WithError(err).Error("list review events failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ReviewEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.ToReviewEventResponse(e))
	}

	page, size = h.paging.Normalize(page, size)
	c.JSON(http.StatusOK, dto.ListReviewEventsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}
