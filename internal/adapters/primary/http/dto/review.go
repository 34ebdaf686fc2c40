package dto

import (
	"time"

	"github.com/google/uuid"

	"submission-review-service/internal/core/domain"
	"submission-review-service/internal/core/services"
)

// DecisionRequest is the optional body of accept and reject calls.
type DecisionRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

type CreateArtifactRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Category string   `json:"category" binding:"max=100"`
	Culture  string   `json:"culture" binding:"max=100"`
	Images   []string `json:"images"`
	Location string   `json:"location" binding:"max=200"`
	Tags     []string `json:"tags"`
}

type CreateCuratorApplicationRequest struct {
	FullName                 string `json:"full_name" binding:"required,max=200"`
	Education                string `json:"education" binding:"max=2000"`
	Portfolio                string `json:"portfolio" binding:"max=2000"`
	CertificationDocumentRef string `json:"certification_document_ref" binding:"max=500"`
}

type SubmissionResponse struct {
	ID                 uuid.UUID                         `json:"id"`
	Kind               string                            `json:"kind"`
	Status             string                            `json:"status"`
	Title              string                            `json:"title"`
	SubmitterID        string                            `json:"submitter_id"`
	SubmitterName      string                            `json:"submitter_name"`
	SubmittedAt        string                            `json:"submitted_at"`
	UpdatedAt          string                            `json:"updated_at"`
	DecidedAt          *string                           `json:"decided_at"`
	DecidedBy          *string                           `json:"decided_by"`
	RejectionReason    *string                           `json:"rejection_reason"`
	AssignedReviewerID *string                           `json:"assigned_reviewer_id"`
	Artifact           *domain.ArtifactPayload           `json:"artifact,omitempty"`
	Application        *domain.CuratorApplicationPayload `json:"application,omitempty"`
}

type ReviewItemResponse struct {
	SubmissionResponse
	CanReview            bool   `json:"can_review"`
	AssignedReviewerName string `json:"assigned_reviewer_name"`
}

type ListReviewSubmissionsResponse struct {
	Items    []ReviewItemResponse `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

type ListSubmissionsResponse struct {
	Items    []SubmissionResponse `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

type StatusCountsResponse struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

type ReviewEventResponse struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Kind         string    `json:"kind"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	ReviewerID   string    `json:"reviewer_id"`
	Reason       *string   `json:"reason"`
	OccurredAt   string    `json:"occurred_at"`
}

type ListReviewEventsResponse struct {
	Items    []ReviewEventResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

func (r CreateArtifactRequest) ToPayload() domain.ArtifactPayload {
	return domain.ArtifactPayload{
		Title:    r.Title,
		Category: r.Category,
		Culture:  r.Culture,
		Images:   r.Images,
		Location: r.Location,
		Tags:     r.Tags,
	}
}

func (r CreateCuratorApplicationRequest) ToPayload() domain.CuratorApplicationPayload {
	return domain.CuratorApplicationPayload{
		FullName:                 r.FullName,
		Education:                r.Education,
		Portfolio:                r.Portfolio,
		CertificationDocumentRef: r.CertificationDocumentRef,
	}
}

func ToSubmissionResponse(s *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                 s.ID,
		Kind:               string(s.Kind),
		Status:             string(s.Status),
		Title:              s.Title(),
		SubmitterID:        s.SubmitterID,
		SubmitterName:      s.SubmitterName,
		SubmittedAt:        formatTime(s.SubmittedAt),
		UpdatedAt:          formatTime(s.UpdatedAt),
		DecidedAt:          formatTimePtr(s.DecidedAt),
		DecidedBy:          s.DecidedBy,
		RejectionReason:    s.RejectionReason,
		AssignedReviewerID: s.AssignedReviewerID,
		Artifact:           s.Artifact,
		Application:        s.Application,
	}
}

func ToReviewItemResponse(item services.ReviewItem) ReviewItemResponse {
	return ReviewItemResponse{
		SubmissionResponse:   ToSubmissionResponse(item.Submission),
		CanReview:            item.CanReview,
		AssignedReviewerName: item.AssignedReviewerName,
	}
}

func ToStatusCountsResponse(c domain.StatusCounts) StatusCountsResponse {
	return StatusCountsResponse{
		Pending:  c.Pending,
		Accepted: c.Accepted,
		Rejected: c.Rejected,
		Total:    c.Total(),
	}
}

func ToReviewEventResponse(e *domain.ReviewEvent) ReviewEventResponse {
	return ReviewEventResponse{
		ID:           e.ID,
		SubmissionID: e.SubmissionID,
		Kind:         string(e.Kind),
		FromStatus:   string(e.FromStatus),
		ToStatus:     string(e.ToStatus),
		ReviewerID:   e.ReviewerID,
		Reason:       e.Reason,
		OccurredAt:   formatTime(e.OccurredAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
