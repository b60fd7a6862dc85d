package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/google/uuid"
)

var rfiCounter atomic.Int64

// Quote options
type QuoteOption func(*domain.QuoteRequest)

func WithQuoteStatus(s domain.QuoteStatus) QuoteOption {
	return func(q *domain.QuoteRequest) {
		q.Status = s
	}
}

// WithQuoted marks the quote quoted with the given amount.
func WithQuoted(amount float64) QuoteOption {
	return func(q *domain.QuoteRequest) {
		q.Status = domain.QuoteQuoted
		q.QuotedAmount = &amount
		now := q.UpdatedAt
		q.QuotedAt = &now
	}
}

func WithSubmittedBy(userID string) QuoteOption {
	return func(q *domain.QuoteRequest) {
		q.SubmittedByID = userID
	}
}

func WithQuoteCreatedAt(t time.Time) QuoteOption {
	return func(q *domain.QuoteRequest) {
		q.CreatedAt = t
		q.UpdatedAt = t
	}
}

func WithCustomer(name, address string) QuoteOption {
	return func(q *domain.QuoteRequest) {
		q.CustomerName = name
		q.Address = address
	}
}

func NewTestQuote(title string, opts ...QuoteOption) *domain.QuoteRequest {
	now := time.Now().UTC()
	q := &domain.QuoteRequest{
		ID:          uuid.New().String(),
		Title:       title,
		Description: title + " description",
		Urgency:     domain.UrgencyStandard,
		Status:      domain.QuotePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithProjectCreatedAt(t time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

func WithProjectNumber(n string) ProjectOption {
	return func(p *domain.Project) {
		p.Number = n
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    domain.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithTaskCreator(userID string) TaskOption {
	return func(t *domain.Task) {
		t.CreatedByID = userID
	}
}

func NewTestTask(projectID, assigneeID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Title:      title,
		AssigneeID: assigneeID,
		Priority:   domain.PriorityMedium,
		Status:     domain.TaskPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RFI options
type RFIOption func(*domain.RFI)

func WithRFIDueDate(d time.Time) RFIOption {
	return func(r *domain.RFI) {
		r.DueDate = &d
	}
}

func NewTestRFI(projectID string, status domain.RFIStatus, opts ...RFIOption) *domain.RFI {
	now := time.Now().UTC()
	n := rfiCounter.Add(1)
	r := &domain.RFI{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Number:    fmt.Sprintf("RFI-%03d", n),
		Question:  fmt.Sprintf("Question %d", n),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Constraint options
type ConstraintOption func(*domain.Constraint)

func WithResolved() ConstraintOption {
	return func(c *domain.Constraint) {
		c.IsResolved = true
	}
}

func WithConstraintDueDate(d time.Time) ConstraintOption {
	return func(c *domain.Constraint) {
		c.DueDate = &d
	}
}

func NewTestConstraint(projectID, description string, opts ...ConstraintOption) *domain.Constraint {
	now := time.Now().UTC()
	c := &domain.Constraint{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewTestDailyReport(projectID, submitterID string, reportDate time.Time) *domain.DailyReport {
	now := time.Now().UTC()
	return &domain.DailyReport{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		SubmittedByID:   submitterID,
		SubmittedByName: "Field " + submitterID,
		ReportDate:      reportDate,
		CrewCount:       4,
		WorkCompleted:   "Framing level 2",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Delivery options
type DeliveryOption func(*domain.Delivery)

func WithETA(t time.Time) DeliveryOption {
	return func(d *domain.Delivery) {
		d.EstimatedArrival = &t
	}
}

func WithNotify24h() DeliveryOption {
	return func(d *domain.Delivery) {
		d.Notify24h = true
	}
}

func WithNotificationSent() DeliveryOption {
	return func(d *domain.Delivery) {
		d.NotificationSent = true
	}
}

func WithDelivered() DeliveryOption {
	return func(d *domain.Delivery) {
		d.IsDelivered = true
	}
}

func WithDeliveryCreator(userID string) DeliveryOption {
	return func(d *domain.Delivery) {
		d.CreatedByID = userID
	}
}

func NewTestDelivery(projectID, supplier string, opts ...DeliveryOption) *domain.Delivery {
	now := time.Now().UTC()
	d := &domain.Delivery{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		SupplierName: supplier,
		Contents:     []string{"rebar", "anchor bolts"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
