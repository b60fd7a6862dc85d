package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// QuoteFilter narrows a quote listing. Zero values mean no restriction.
type QuoteFilter struct {
	Statuses      []domain.QuoteStatus
	Urgencies     []domain.Urgency
	SubmittedByID string
	AssignedToID  string
	Limit         int
	Offset        int
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	Statuses []domain.ProjectStatus
	Limit    int
	Offset   int
}

type QuoteRepo interface {
	Create(ctx context.Context, q *domain.QuoteRequest) error
	GetByID(ctx context.Context, id string) (*domain.QuoteRequest, error)
	List(ctx context.Context, f QuoteFilter) ([]*domain.QuoteRequest, error)
	// UpdateIfStatus writes q only while the stored status still equals
	// expected. It reports false when another writer got there first.
	UpdateIfStatus(ctx context.Context, q *domain.QuoteRequest, expected domain.QuoteStatus) (bool, error)
	CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetBySourceQuote(ctx context.Context, quoteID string) (*domain.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int, error)
}

type ProjectSequenceRepo interface {
	Next(ctx context.Context, scope string) (int, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string, statuses ...domain.TaskStatus) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
}

type RFIRepo interface {
	Create(ctx context.Context, r *domain.RFI) error
	GetByID(ctx context.Context, id string) (*domain.RFI, error)
	ListByProject(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error)
	Update(ctx context.Context, r *domain.RFI) error
}

type ConstraintRepo interface {
	Create(ctx context.Context, c *domain.Constraint) error
	GetByID(ctx context.Context, id string) (*domain.Constraint, error)
	// ListByProject filters on is_resolved when resolved is non-nil.
	ListByProject(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error)
	Update(ctx context.Context, c *domain.Constraint) error
}

type DailyReportRepo interface {
	Create(ctx context.Context, r *domain.DailyReport) error
	GetByID(ctx context.Context, id string) (*domain.DailyReport, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.DailyReport, error)
	// ListSince returns reports dated on or after since, newest first.
	ListSince(ctx context.Context, since time.Time) ([]*domain.DailyReport, error)
}

type DeliveryRepo interface {
	Create(ctx context.Context, d *domain.Delivery) error
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	List(ctx context.Context, projectID string) ([]*domain.Delivery, error)
	Update(ctx context.Context, d *domain.Delivery) error
	Delete(ctx context.Context, id string) error
	// ListReminderCandidates returns opted-in, undelivered deliveries whose
	// reminder has not fired and whose arrival is known.
	ListReminderCandidates(ctx context.Context) ([]*domain.Delivery, error)
	// MarkNotificationSent sets the reminder latch. It reports true only for
	// the caller that flipped it.
	MarkNotificationSent(ctx context.Context, id string, at time.Time) (bool, error)
}

// IdempotencyRecord is what a submission token produced the first time.
type IdempotencyRecord struct {
	Key        string
	Operation  string
	ResourceID string
}

type IdempotencyRepo interface {
	// Lookup returns the record for key, or nil when the key is new.
	Lookup(ctx context.Context, key string) (*IdempotencyRecord, error)
	Record(ctx context.Context, key, operation, resourceID string) error
}
