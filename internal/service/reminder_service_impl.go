package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type reminderService struct {
	store    DeliveryStore
	notifier Notifier
	logger   *slog.Logger
	clock    func() time.Time
	observer UseCaseObserver
}

func NewReminderService(store DeliveryStore, notifier Notifier, logger *slog.Logger, observers ...UseCaseObserver) ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reminderService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *reminderService) EvaluateReminders(ctx context.Context, projectID string, now time.Time) (*app.ReminderResult, error) {
	var (
		list []*domain.Delivery
		err  error
	)
	if projectID == "" {
		list, err = s.store.ListReminderCandidates(ctx)
	} else {
		list, err = s.store.List(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("load deliveries: %w", err)
	}
	return s.EvaluateDeliveries(ctx, list, now)
}

// EvaluateDeliveries fires at most one reminder per delivery. The latch is
// claimed in the store before notifying, so a concurrent evaluator that
// loses the claim stays silent. A notifier failure after the claim is
// logged and the reminder is not retried.
func (s *reminderService) EvaluateDeliveries(ctx context.Context, deliveries []*domain.Delivery, now time.Time) (res *app.ReminderResult, err error) {
	fields := map[string]any{"candidates": len(deliveries)}
	defer observe(ctx, s.observer, "reminder.evaluate", s.clock(), fields, &err)

	res = &app.ReminderResult{Evaluated: len(deliveries)}
	for _, d := range deliveries {
		if !d.ReminderDue(now) {
			continue
		}
		won, err := s.store.MarkNotificationSent(ctx, d.ID, now)
		if err != nil {
			return res, fmt.Errorf("latch reminder for delivery %s: %w", d.ID, err)
		}
		d.NotificationSent = true
		if !won {
			res.Skipped++
			continue
		}
		r := app.Reminder{
			DeliveryID: d.ID,
			ProjectID:  d.ProjectID,
			Supplier:   d.SupplierName,
			PONumber:   d.PONumber,
			ETA:        *d.EstimatedArrival,
		}
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.logger.WarnContext(ctx, "reminder_notify_failed", "delivery_id", d.ID, "error", err)
		}
		res.Fired = append(res.Fired, r)
	}
	fields["fired"] = len(res.Fired)
	fields["skipped"] = res.Skipped
	return res, nil
}

func (s *reminderService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return domain.NewValidationError("interval", "must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.EvaluateReminders(ctx, "", s.clock()); err != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "reminder_pass_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LogNotifier writes reminders to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r app.Reminder) error {
	n.Logger.InfoContext(ctx, "delivery_reminder",
		"delivery_id", r.DeliveryID,
		"project_id", r.ProjectID,
		"supplier", r.Supplier,
		"po_number", r.PONumber,
		"eta", r.ETA.Format(time.RFC3339),
	)
	return nil
}
