package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindArtifact           Kind = "artifact"
	KindCuratorApplication Kind = "curator_application"
)

// Kinds lists every reviewable kind.
var Kinds = []Kind{KindArtifact, KindCuratorApplication}

func (k Kind) Valid() bool {
	return k == KindArtifact || k == KindCuratorApplication
}

// ParseKind accepts the empty string as "any kind".
func ParseKind(raw string) (Kind, error) {
	if raw == "" {
		return "", nil
	}
	k := Kind(raw)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Statuses lists every status in tab order.
var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Terminal reports whether no transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ParseStatus accepts the empty string as "any status".
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return "", nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ArtifactPayload is the descriptive metadata of an uploaded artifact.
// The review workflow never inspects it.
type ArtifactPayload struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Culture  string   `json:"culture"`
	Images   []string `json:"images"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
}

// CuratorApplicationPayload is the applicant profile of a visitor asking
// to become a curator. The review workflow never inspects it.
type CuratorApplicationPayload struct {
	FullName                 string `json:"full_name"`
	Education                string `json:"education"`
	Portfolio                string `json:"portfolio"`
	CertificationDocumentRef string `json:"certification_document_ref"`
}

// Submission is a tagged variant: common workflow fields plus exactly one
// kind-specific payload selected by Kind.
type Submission struct {
	ID                 uuid.UUID  `json:"id"`
	Kind               Kind       `json:"kind"`
	Status             Status     `json:"status"`
	SubmitterID        string     `json:"submitter_id"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DecidedAt          *time.Time `json:"decided_at"`
	DecidedBy          *string    `json:"decided_by"`
	RejectionReason    *string    `json:"rejection_reason"`
	AssignedReviewerID *string    `json:"assigned_reviewer_id"`

	Artifact    *ArtifactPayload           `json:"artifact,omitempty"`
	Application *CuratorApplicationPayload `json:"application,omitempty"`

	// Computed fields
	SubmitterName string `json:"submitter_name,omitempty"`
}

// Title is the searchable headline of the submission.
func (s *Submission) Title() string {
	switch s.Kind {
	case KindArtifact:
		if s.Artifact != nil {
			return s.Artifact.Title
		}
	case KindCuratorApplication:
		if s.Application != nil {
			return s.Application.FullName
		}
	}
	return ""
}

// IsAssignedTo reports whether reviewerID holds the assignment.
func (s *Submission) IsAssignedTo(reviewerID string) bool {
	return s.AssignedReviewerID != nil && *s.AssignedReviewerID == reviewerID
}

// Decision carries the fields written by the pending → terminal transition.
type Decision struct {
	Status          Status
	DecidedAt       time.Time
	DecidedBy       string
	RejectionReason *string
}

// Apply copies the decision onto s.
func (d Decision) Apply(s *Submission) {
	decidedAt := d.DecidedAt
	decidedBy := d.DecidedBy
	s.Status = d.Status
	s.DecidedAt = &decidedAt
	s.DecidedBy = &decidedBy
	s.RejectionReason = d.RejectionReason
	s.UpdatedAt = d.DecidedAt
}

// StatusCounts partitions a filtered submission set by status.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Accepted + c.Rejected
}

// Add increments the bucket for s by n.
func (c *StatusCounts) Add(s Status, n int) {
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusAccepted:
		c.Accepted += n
	case StatusRejected:
		c.Rejected += n
	}
}
