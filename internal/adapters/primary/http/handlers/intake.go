package handlers

import (
	"net/http"

	"submission-review-service/internal/adapters/primary/http/dto"
	"submission-review-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SubmitArtifact(c *gin.Context) {
	var req dto.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.SubmitArtifact(c.Request.Context(), identity(c), req.ToPayload())
	if err != nil {
		log.WithError(err).Warn("submit artifact failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmissionResponse(sub))
}

func (h *Handler) SubmitCuratorApplication(c *gin.Context) {
	var req dto.CreateCuratorApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.SubmitCuratorApplication(c.Request.Context(), identity(c), req.ToPayload())
	if err != nil {
		log.WithError(err).Warn("submit curator application failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmissionResponse(sub))
}

func (h *Handler) ListMySubmissions(c *gin.Context) {
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

	subs, total, err := h.submissionSvc.ListMine(c.Request.Context(), identity(c), kind, status, page, size)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		items = append(items, dto.ToSubmissionResponse(s))
	}

	page, size = h.paging.Normalize(page, size)
	c.JSON(http.StatusOK, dto.ListSubmissionsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}
