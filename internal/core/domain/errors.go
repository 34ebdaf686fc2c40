package domain

import "errors"

// ============================================================================
// Submission Errors
// ============================================================================

// Not found errors
var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
)

// Conflict errors
var (
	// ErrConflict is the store's compare-and-set failure signal. Services
	// translate it before it reaches a caller.
	ErrConflict            = errors.New("concurrent modification conflict")
	ErrInvalidTransition   = errors.New("submission already decided")
	ErrAlreadyDecided      = errors.New("submission already decided by another reviewer")
	ErrApplicationPending  = errors.New("a curator application is already pending for this user")
	ErrNotificationExists  = errors.New("notification already exists")
	ErrReviewEventRecorded = errors.New("review event already recorded for this submission")
)

// Validation errors
var (
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrReasonNotAllowed        = errors.New("a reason is only allowed when rejecting")
	ErrInvalidOutcome          = errors.New("outcome must be accepted or rejected")
	ErrInvalidKind             = errors.New("kind must be artifact or curator_application")
	ErrInvalidStatus           = errors.New("status must be pending, accepted or rejected")
	ErrInvalidTitle            = errors.New("artifact title is required")
	ErrInvalidFullName         = errors.New("applicant full name is required")
	ErrInvalidSubmissionID     = errors.New("submission ID is required")
	ErrInvalidNotificationID   = errors.New("notification ID is required")
)

// Authorization errors
var (
	ErrUnauthenticated = errors.New("reviewer identity is required")
	ErrForbidden       = errors.New("reviewer is not allowed to act on this submission")
)

// ============================================================================
// Infrastructure Errors
// ============================================================================

var (
	// ErrTimeout marks a store or dispatch call that exceeded its deadline.
	// Callers may retry.
	ErrTimeout = errors.New("operation timed out")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrRejectionReasonRequired),
		errors.Is(err, ErrReasonNotAllowed),
		errors.Is(err, ErrInvalidOutcome),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidTitle),
		errors.Is(err, ErrInvalidFullName),
		errors.Is(err, ErrInvalidSubmissionID),
		errors.Is(err, ErrInvalidNotificationID):
		return true
	}
	return false
}
