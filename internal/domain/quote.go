package domain

import (
	"math"
	"strings"
	"time"
)

// QuoteRequest is a field-submitted request for a price estimate.
type QuoteRequest struct {
	ID          string
	Title       string
	Description string

	Address   string
	City      string
	State     string
	Latitude  *float64
	Longitude *float64

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Photos            []string
	ScopeNotes        string
	Urgency           Urgency
	PreferredSchedule string

	Status QuoteStatus

	SubmittedByID   string
	SubmittedByName string
	AssignedToID    string

	// Set only once the quote reaches quoted.
	QuotedAmount *float64
	QuoteNotes   string
	QuotedAt     *time.Time

	ConvertedProjectID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the quote accepts no further transitions.
func (q *QuoteRequest) IsTerminal() bool {
	return q.Status == QuoteDeclined || q.Status == QuoteConverted
}

// AwaitingDecision reports whether the quote belongs in the PM queue.
func (q *QuoteRequest) AwaitingDecision() bool {
	return q.Status == QuotePending || q.Status == QuoteInReview
}

// PrepareSubmission validates a new field submission and normalizes it into
// the pending state. Only title and description are required.
func (q *QuoteRequest) PrepareSubmission(now time.Time) error {
	q.Title = strings.TrimSpace(q.Title)
	q.Description = strings.TrimSpace(q.Description)
	if q.Title == "" {
		return NewValidationError("title", "is required")
	}
	if q.Description == "" {
		return NewValidationError("description", "is required")
	}
	if q.Urgency == "" {
		q.Urgency = UrgencyStandard
	}
	if !ValidUrgencies[q.Urgency] {
		return NewValidationError("urgency", "must be one of standard, rush, emergency")
	}
	q.Status = QuotePending
	q.QuotedAmount = nil
	q.QuotedAt = nil
	q.ConvertedProjectID = ""
	q.CreatedAt = now
	q.UpdatedAt = now
	return nil
}

// Assign claims the quote for a PM. A pending quote moves to in_review;
// an in_review quote is reassigned in place.
func (q *QuoteRequest) Assign(assigneeID string, now time.Time) error {
	if strings.TrimSpace(assigneeID) == "" {
		return NewValidationError("assignee", "is required")
	}
	switch q.Status {
	case QuotePending:
		q.Status = QuoteInReview
	case QuoteInReview:
	default:
		return q.transitionError(QuoteInReview)
	}
	q.AssignedToID = assigneeID
	q.UpdatedAt = now
	return nil
}

// Decide records the PM disposition. The transition guard runs before input
// validation so a terminal quote always reports InvalidTransition.
func (q *QuoteRequest) Decide(outcome QuoteStatus, amount *float64, notes string, now time.Time) error {
	if outcome != QuoteQuoted && outcome != QuoteDeclined {
		return NewValidationError("outcome", "must be quoted or declined")
	}
	if !CanTransitionQuote(q.Status, outcome) {
		return q.transitionError(outcome)
	}
	if outcome == QuoteQuoted {
		if amount == nil {
			return NewValidationError("quoted_amount", "is required when quoting")
		}
		if math.IsNaN(*amount) || math.IsInf(*amount, 0) || *amount <= 0 {
			return NewValidationError("quoted_amount", "must be a finite amount greater than zero")
		}
		v := *amount
		q.QuotedAmount = &v
		q.QuotedAt = &now
	} else {
		q.QuotedAmount = nil
		q.QuotedAt = nil
	}
	q.Status = outcome
	q.QuoteNotes = notes
	q.UpdatedAt = now
	return nil
}

// MarkConverted closes a quoted request against the project created from it.
func (q *QuoteRequest) MarkConverted(projectID string, now time.Time) error {
	if !CanTransitionQuote(q.Status, QuoteConverted) {
		return q.transitionError(QuoteConverted)
	}
	q.Status = QuoteConverted
	q.ConvertedProjectID = projectID
	q.UpdatedAt = now
	return nil
}

// CheckInvariants verifies the status enum and the amount rule:
// QuotedAmount is set if and only if status is quoted or converted.
func (q *QuoteRequest) CheckInvariants() error {
	if !ValidQuoteStatus(q.Status) {
		return NewValidationError("status", "unknown quote status "+string(q.Status))
	}
	priced := q.Status == QuoteQuoted || q.Status == QuoteConverted
	if priced && q.QuotedAmount == nil {
		return NewValidationError("quoted_amount", "missing for status "+string(q.Status))
	}
	if !priced && q.QuotedAmount != nil {
		return NewValidationError("quoted_amount", "set for status "+string(q.Status))
	}
	return nil
}

func (q *QuoteRequest) transitionError(to QuoteStatus) error {
	return &InvalidTransitionError{Entity: "quote", ID: q.ID, From: string(q.Status), To: string(to)}
}
