package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind enumerates the application form types the platform accepts. Each kind
// is backed by its own table with its own column layout; the aggregator owns
// the mapping into the normalized shape below.
type Kind string

const (
	KindIncubation  Kind = "incubation"
	KindInvestment  Kind = "investment"
	KindProgram     Kind = "program"
	KindMentor      Kind = "mentor"
	KindGrant       Kind = "grant"
	KindPartnership Kind = "partnership"
	KindHackathon   Kind = "hackathon"
)

// Kinds returns all supported kinds in their canonical order. Merge ties on
// submitted_at break by this order, so it must stay stable.
func Kinds() []Kind {
	return []Kind{
		KindIncubation,
		KindInvestment,
		KindProgram,
		KindMentor,
		KindGrant,
		KindPartnership,
		KindHackathon,
	}
}

// ParseKind validates a kind received from a caller.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Status enumerates review states. Source rows carry arbitrary casing
// ("Pending", "APPROVED"); NormalizeStatus canonicalizes on the way in.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Statuses returns all valid review states.
func Statuses() []Status {
	return []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected}
}

// NormalizeStatus lowercases a raw source status so comparisons and filters
// are stable. Unknown values are kept (lowercased) rather than dropped; the
// source schema does not enforce the enum and a row must never disappear
// from the admin feed because of a stray status value.
func NormalizeStatus(s string) Status {
	return Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
}

// ParseStatus validates a status received from a caller, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := NormalizeStatus(s)
	for _, known := range Statuses() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// SentinelNA fills normalized display fields whose source column is NULL or
// missing, so downstream search and rendering never meet an absent value.
const SentinelNA = "N/A"

// Application is the normalized view over all seven source tables. ID is
// unique only within a Kind; the (Kind, ID) pair is the effective identity
// everywhere in this service.
type Application struct {
	ID            string     `json:"id"`
	Kind          Kind       `json:"kind"`
	SubjectName   string     `json:"subjectName"`
	ApplicantName string     `json:"applicantName"`
	ContactEmail  string     `json:"contactEmail"`
	StageOrTrack  string     `json:"stageOrTrack"`
	Status        Status     `json:"status"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	ReviewedBy    *string    `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	AdminNotes    *string    `json:"adminNotes"`
}

// MatchesSearch reports whether the application matches a free-text search.
// Case-insensitive substring semantics, OR across the three display fields.
func (a *Application) MatchesSearch(search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.SubjectName), needle) ||
		strings.Contains(strings.ToLower(a.ApplicantName), needle) ||
		strings.Contains(strings.ToLower(a.ContactEmail), needle)
}

// ListFilter narrows the aggregated feed. Kind and Status hold the
// already-validated values; empty means no constraint (the HTTP layer maps
// "all" to empty before calling in).
type ListFilter struct {
	Search   string
	Status   Status
	Kind     Kind
	Page     int
	PageSize int
}

// Page is one slice of the aggregated feed. Total counts the filtered set
// before pagination. Warnings names kinds whose source read failed and were
// left out of this result.
type Page struct {
	Items    []Application `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Stats aggregates per-status counts across every kind.
type Stats struct {
	Total       int          `json:"total"`
	Pending     int          `json:"pending"`
	UnderReview int          `json:"underReview"`
	Approved    int          `json:"approved"`
	Rejected    int          `json:"rejected"`
	PerKind     map[Kind]int `json:"perKind"`
	Warnings    []string     `json:"warnings,omitempty"`
}
