package loan

import (
	"fmt"
	"strings"
)

// CanonicalStatus is the closed set of application states used internally
// after ingesting free-form status strings from either record source.
type CanonicalStatus string

const (
	StatusPendingDocuments CanonicalStatus = "pending_documents"
	StatusUnderReview      CanonicalStatus = "under_review"
	StatusApproved         CanonicalStatus = "approved"
	StatusRejected         CanonicalStatus = "rejected"
	StatusActive           CanonicalStatus = "active"
	StatusCompleted        CanonicalStatus = "completed"
)

// Display categories, the style buckets the portal renders statuses with.
const (
	DisplayAttention = "attention"
	DisplayNeutral   = "neutral"
	DisplaySuccess   = "success"
	DisplayDanger    = "danger"
)

// statusTable maps the vocabularies of both record sources onto canonical
// states. The remote store and the submission cache never agreed on a
// vocabulary, and upstream adds new strings without a version bump, so
// the table carries every spelling observed in production.
var statusTable = map[string]CanonicalStatus{
	"pending_documents":  StatusPendingDocuments,
	"pending":            StatusPendingDocuments,
	"draft":              StatusPendingDocuments,
	"new":                StatusPendingDocuments,
	"documents_required": StatusPendingDocuments,
	"awaiting_documents": StatusPendingDocuments,

	"under_review": StatusUnderReview,
	"in_review":    StatusUnderReview,
	"reviewing":    StatusUnderReview,
	"submitted":    StatusUnderReview,
	"processing":   StatusUnderReview,

	"approved": StatusApproved,
	"accepted": StatusApproved,

	"rejected": StatusRejected,
	"declined": StatusRejected,
	"denied":   StatusRejected,

	"active":    StatusActive,
	"disbursed": StatusActive,
	"ongoing":   StatusActive,

	"completed": StatusCompleted,
	"closed":    StatusCompleted,
	"paid_off":  StatusCompleted,
}

var displayCategories = map[CanonicalStatus]string{
	StatusPendingDocuments: DisplayAttention,
	StatusUnderReview:      DisplayNeutral,
	StatusApproved:         DisplaySuccess,
	StatusRejected:         DisplayDanger,
	StatusActive:           DisplaySuccess,
	StatusCompleted:        DisplayNeutral,
}

// StatusInfo is the point-in-time classification of a raw status string.
// The normalizer does not validate state-machine transitions; the
// upstream system owns that authority.
type StatusInfo struct {
	Canonical       CanonicalStatus `json:"canonical"`
	DisplayCategory string          `json:"display_category"`
}

// UnknownStatusError is returned in strict mode for a status string
// missing from the mapping table.
type UnknownStatusError struct {
	Raw string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown application status %q", e.Raw)
}

// Normalizer classifies raw status strings. The zero value is lenient:
// unknown statuses classify as PendingDocuments so a new upstream
// vocabulary keeps the dashboard rendering with a "needs action" reading.
// Strict mode instead surfaces an UnknownStatusError, for deployments
// where an unmapped status means corrupt data rather than a new word.
type Normalizer struct {
	Strict bool
}

// Normalize maps a raw status string onto its canonical state and display
// category. Matching is case-insensitive and tolerant of space/hyphen
// separators.
func (n Normalizer) Normalize(raw string) (StatusInfo, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	canonical, ok := statusTable[key]
	if !ok {
		if n.Strict {
			return StatusInfo{}, &UnknownStatusError{Raw: raw}
		}
		canonical = StatusPendingDocuments
	}

	return StatusInfo{
		Canonical:       canonical,
		DisplayCategory: displayCategories[canonical],
	}, nil
}
