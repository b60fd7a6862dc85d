package backend

import (
	"context"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type QuoteQuery struct {
	Statuses      []domain.QuoteStatus
	Urgencies     []domain.Urgency
	SubmittedByID string
	AssignedToID  string
	Offset        int
	Limit         int
}

// QuoteUpdate is the decide payload: the target status plus amount and notes.
type QuoteUpdate struct {
	Status       domain.QuoteStatus
	QuotedAmount *float64
	QuoteNotes   string
}

type TaskQuery struct {
	ProjectID  string
	Statuses   []domain.TaskStatus
	AssigneeID string
}

type DailyReportQuery struct {
	ProjectID string
	Since     *time.Time
}

type Quotes interface {
	ListQuotes(ctx context.Context, q QuoteQuery) ([]*domain.QuoteRequest, error)
	GetQuote(ctx context.Context, id string) (*domain.QuoteRequest, error)
	// CreateQuote is deduplicated on idempotencyKey.
	CreateQuote(ctx context.Context, q *domain.QuoteRequest, idempotencyKey string) (*domain.QuoteRequest, error)
	UpdateQuote(ctx context.Context, id string, u QuoteUpdate) (*domain.QuoteRequest, error)
	AssignQuote(ctx context.Context, id, assigneeID string) (*domain.QuoteRequest, error)
	// ConvertQuote is deduplicated on idempotencyKey.
	ConvertQuote(ctx context.Context, id, idempotencyKey string) (*app.ConvertResult, error)
}

type Projects interface {
	ListProjects(ctx context.Context, statuses ...domain.ProjectStatus) ([]*domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, p *domain.Project, idempotencyKey string) (*domain.Project, error)
	PublishProject(ctx context.Context, id string, to domain.ProjectStatus) (*domain.Project, error)
}

type Tasks interface {
	ListTasks(ctx context.Context, q TaskQuery) ([]*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error)
	AcknowledgeTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
	StartTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
	CompleteTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
	BlockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
	UnblockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error)
}

type RFIs interface {
	ListRFIs(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error)
	CreateRFI(ctx context.Context, r *domain.RFI) (*domain.RFI, error)
}

type Constraints interface {
	// ListConstraints filters on is_resolved when resolved is non-nil.
	ListConstraints(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error)
	CreateConstraint(ctx context.Context, c *domain.Constraint) (*domain.Constraint, error)
}

type DailyReports interface {
	ListDailyReports(ctx context.Context, q DailyReportQuery) ([]*domain.DailyReport, error)
	CreateDailyReport(ctx context.Context, r *domain.DailyReport, idempotencyKey string) (*domain.DailyReport, error)
}

type Queue interface {
	QueueStats(ctx context.Context) (*app.QueueStats, error)
}

// Backend is every office API operation the pipeline consumes.
type Backend interface {
	Quotes
	Projects
	Tasks
	RFIs
	Constraints
	DailyReports
	Queue
}
