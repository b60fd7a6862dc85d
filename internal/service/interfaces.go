package service

import (
	"context"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/repository"
)

type QuoteService interface {
	Submit(ctx context.Context, req app.SubmitQuoteRequest) (*domain.QuoteRequest, error)
	Get(ctx context.Context, id string) (*domain.QuoteRequest, error)
	List(ctx context.Context, req app.ListQuotesRequest) ([]*domain.QuoteRequest, error)
	// ListMine returns the quotes the acting user submitted.
	ListMine(ctx context.Context, statuses ...domain.QuoteStatus) ([]*domain.QuoteRequest, error)
	// Assign claims the quote; an empty assigneeID means the acting user.
	Assign(ctx context.Context, quoteID, assigneeID string) (*domain.QuoteRequest, error)
	Decide(ctx context.Context, req app.DecideQuoteRequest) (*domain.QuoteRequest, error)
}

type ConversionService interface {
	Convert(ctx context.Context, quoteID string) (*app.ConvertResult, error)
	// ConvertWithKey reuses a token from an attempt whose outcome is unknown.
	ConvertWithKey(ctx context.Context, quoteID, idempotencyKey string) (*app.ConvertResult, error)
}

type QueueService interface {
	ListQueue(ctx context.Context, req app.QueueRequest) (*app.QueuePage, error)
	Stats(ctx context.Context) (*app.QueueStats, error)
	// Load runs the items and stats reads side by side. Neither failure
	// hides the other half.
	Load(ctx context.Context, req app.QueueRequest) app.QueueView
	// LoadDashboard is Load with recent daily reports merged in.
	LoadDashboard(ctx context.Context, req app.QueueRequest) app.QueueView
}

type ProjectService interface {
	CreateDraft(ctx context.Context, req app.CreateDraftRequest) (*domain.Project, error)
	Publish(ctx context.Context, projectID string, to domain.ProjectStatus) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, statuses ...domain.ProjectStatus) ([]*domain.Project, error)
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	ListMine(ctx context.Context, statuses ...domain.TaskStatus) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string, statuses ...domain.TaskStatus) ([]*domain.Task, error)
	Acknowledge(ctx context.Context, id string) (*domain.Task, error)
	Start(ctx context.Context, id string) (*domain.Task, error)
	Complete(ctx context.Context, id string) (*domain.Task, error)
	Block(ctx context.Context, id string) (*domain.Task, error)
	Unblock(ctx context.Context, id string) (*domain.Task, error)
}

// DeliveryStore is where delivery records live. The local SQLite repository
// satisfies it; a server-side store can replace it without touching callers.
type DeliveryStore interface {
	repository.DeliveryRepo
}

type DeliveryService interface {
	Create(ctx context.Context, d *domain.Delivery) (*domain.Delivery, error)
	Get(ctx context.Context, id string) (*app.DeliveryView, error)
	List(ctx context.Context, projectID string) ([]app.DeliveryView, error)
	Update(ctx context.Context, d *domain.Delivery) error
	MarkReleased(ctx context.Context, id string) (*domain.Delivery, error)
	MarkDelivered(ctx context.Context, id string) (*domain.Delivery, error)
	Reschedule(ctx context.Context, id string, eta time.Time) (*domain.Delivery, error)
	// Delete is allowed only for the user who recorded the delivery.
	Delete(ctx context.Context, id string) error
}

// Notifier delivers a fired reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, r app.Reminder) error
}

type ReminderService interface {
	// EvaluateReminders checks every delivery of projectID, or all projects
	// when projectID is empty.
	EvaluateReminders(ctx context.Context, projectID string, now time.Time) (*app.ReminderResult, error)
	EvaluateDeliveries(ctx context.Context, deliveries []*domain.Delivery, now time.Time) (*app.ReminderResult, error)
	// Run evaluates all projects every interval until ctx ends.
	Run(ctx context.Context, interval time.Duration) error
}
