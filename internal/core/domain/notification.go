package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationArtifactAccepted           NotificationType = "artifact-accepted"
	NotificationArtifactRejected           NotificationType = "artifact-rejected"
	NotificationArtifactSubmitted          NotificationType = "artifact-submitted"
	NotificationCuratorApplicationApproved NotificationType = "curator-application-approved"
	NotificationCuratorApplicationRejected NotificationType = "curator-application-rejected"
)

// dedupeSubmitted is the dedupe suffix for new-upload notices.
const dedupeSubmitted = "submitted"

// Notification is one inbox item addressed to a single recipient.
// RelatedID deep-links back to the submission.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	RelatedID   uuid.UUID        `json:"related_id"`
	DedupeKey   string           `json:"-"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}

type notificationCopy struct {
	Type  NotificationType
	Title string
	// Message is a format string taking the submission title.
	Message string
}

type copyKey struct {
	Kind   Kind
	Status Status
}

// notificationCopies is the (kind, status) lookup for notification text.
var notificationCopies = map[copyKey]notificationCopy{
	{KindArtifact, StatusAccepted}: {
		Type:    NotificationArtifactAccepted,
		Title:   "Artifact accepted",
		Message: "Your artifact %q was accepted and is now part of the archive.",
	},
	{KindArtifact, StatusRejected}: {
		Type:    NotificationArtifactRejected,
		Title:   "Artifact rejected",
		Message: "Your artifact %q was rejected.",
	},
	{KindArtifact, StatusPending}: {
		Type:    NotificationArtifactSubmitted,
		Title:   "New artifact awaiting review",
		Message: "Artifact %q was uploaded and is waiting for review.",
	},
	{KindCuratorApplication, StatusAccepted}: {
		Type:    NotificationCuratorApplicationApproved,
		Title:   "Curator application approved",
		Message: "Your curator application (%s) was approved. Welcome aboard.",
	},
	{KindCuratorApplication, StatusRejected}: {
		Type:    NotificationCuratorApplicationRejected,
		Title:   "Curator application rejected",
		Message: "Your curator application (%s) was rejected.",
	},
}

// DecisionDedupeKey identifies the single notification a transition may
// produce for its submitter.
func DecisionDedupeKey(submissionID uuid.UUID, to Status) string {
	return fmt.Sprintf("%s:%s", submissionID, to)
}

// SubmittedDedupeKey identifies the new-upload notice per recipient.
func SubmittedDedupeKey(submissionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", submissionID, dedupeSubmitted)
}

// BuildNotification renders the notification for (kind, status) addressed
// to recipientID. reason is appended to rejection messages when present.
func BuildNotification(recipientID string, kind Kind, status Status, submissionID uuid.UUID, title string, reason *string, dedupeKey string, now time.Time) (*Notification, error) {
	c, ok := notificationCopies[copyKey{kind, status}]
	if !ok {
		return nil, fmt.Errorf("no notification copy for %s/%s", kind, status)
	}

	message := fmt.Sprintf(c.Message, title)
	if reason != nil && *reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, *reason)
	}

	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        c.Type,
		Title:       c.Title,
		Message:     message,
		RelatedID:   submissionID,
		DedupeKey:   dedupeKey,
		CreatedAt:   now,
	}, nil
}
