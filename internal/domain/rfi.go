package domain

import (
	"strings"
	"time"
)

// RFI is a request for information raised from the field.
type RFI struct {
	ID        string
	ProjectID string
	Number    string
	Question  string
	Location  string
	Status    RFIStatus
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the RFI is sent and still waiting on an answer.
func (r *RFI) IsOpen() bool {
	return r.Status == RFISubmitted || r.Status == RFIRouted
}

// Validate checks the fields required to raise an RFI. A blank status
// defaults to draft.
func (r *RFI) Validate() error {
	if r.ProjectID == "" {
		return NewValidationError("project_id", "is required")
	}
	if strings.TrimSpace(r.Question) == "" {
		return NewValidationError("question", "is required")
	}
	switch r.Status {
	case "":
		r.Status = RFIDraft
	case RFIDraft, RFISubmitted, RFIRouted, RFIAnswered, RFIClosed:
	default:
		return NewValidationError("status", "unknown rfi status "+string(r.Status))
	}
	return nil
}

// OpenRFIStatuses are the statuses the blocker feed treats as open.
var OpenRFIStatuses = []RFIStatus{RFISubmitted, RFIRouted}

// Constraint is something that must happen before work can proceed.
type Constraint struct {
	ID          string
	ProjectID   string
	Description string
	Type        string
	Area        string
	OwnerName   string
	DueDate     *time.Time
	IsResolved  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Constraint) Validate() error {
	if c.ProjectID == "" {
		return NewValidationError("project_id", "is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return NewValidationError("description", "is required")
	}
	return nil
}

// DailyReport is the end-of-day field summary for one project.
type DailyReport struct {
	ID                string
	ProjectID         string
	SubmittedByID     string
	SubmittedByName   string
	ReportDate        time.Time
	CrewCount         int
	WorkCompleted     string
	DelaysConstraints string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the fields required for a daily report submission.
func (r *DailyReport) Validate() error {
	if r.ProjectID == "" {
		return NewValidationError("project_id", "is required")
	}
	if r.ReportDate.IsZero() {
		return NewValidationError("report_date", "is required")
	}
	if r.CrewCount < 0 {
		return NewValidationError("crew_count", "cannot be negative")
	}
	return nil
}
