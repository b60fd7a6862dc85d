package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project is a construction job. A project in draft status is a Draft Project
// awaiting PM completion; there is no separate draft entity.
type Project struct {
	ID          string
	Number      string
	Name        string
	Description string
	Status      ProjectStatus

	Address   string
	City      string
	State     string
	Latitude  *float64
	Longitude *float64

	ClientName    string
	ContractValue *float64

	SourceQuoteID string
	CreatedByID   string
	CreatedByName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDraft reports whether the project still awaits PM setup.
func (p *Project) IsDraft() bool {
	return p.Status == ProjectDraft
}

// PrepareDraft validates a Quick Setup or Full Setup submission.
func (p *Project) PrepareDraft(now time.Time) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return NewValidationError("name", "is required")
	}
	p.Status = ProjectDraft
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// Publish moves a draft to planning or active.
func (p *Project) Publish(to ProjectStatus, now time.Time) error {
	if p.Status != ProjectDraft || !CanTransitionProject(p.Status, to) {
		return &InvalidTransitionError{Entity: "project", ID: p.ID, From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

// ProjectNumber formats the job number assigned on conversion, e.g. Q12-20260118.
func ProjectNumber(seq int, on time.Time) string {
	return fmt.Sprintf("Q%d-%s", seq, on.Format("20060102"))
}

// NewProjectFromQuote builds the planning-stage project a quoted request
// converts into. The quote must already be quoted.
func NewProjectFromQuote(q *QuoteRequest, id, number string, now time.Time) (*Project, error) {
	if q.Status != QuoteQuoted {
		return nil, q.transitionError(QuoteConverted)
	}
	var value *float64
	if q.QuotedAmount != nil {
		v := *q.QuotedAmount
		value = &v
	}
	return &Project{
		ID:            id,
		Number:        number,
		Name:          q.Title,
		Description:   q.Description,
		Status:        ProjectPlanning,
		Address:       q.Address,
		City:          q.City,
		State:         q.State,
		Latitude:      q.Latitude,
		Longitude:     q.Longitude,
		ClientName:    q.CustomerName,
		ContractValue: value,
		SourceQuoteID: q.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
