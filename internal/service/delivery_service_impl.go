package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type deliveryService struct {
	store    DeliveryStore
	actor    domain.Actor
	clock    func() time.Time
	observer UseCaseObserver
}

func NewDeliveryService(store DeliveryStore, actor domain.Actor, observers ...UseCaseObserver) DeliveryService {
	return &deliveryService{
		store:    store,
		actor:    actor,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *deliveryService) Create(ctx context.Context, d *domain.Delivery) (*domain.Delivery, error) {
	rec := *d
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	now := s.clock()
	rec.ID = uuid.New().String()
	rec.CreatedByID = domain.CoalesceStr(s.actor.UserID, rec.CreatedByID)
	rec.NotificationSent = false
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.store.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	return &rec, nil
}

func (s *deliveryService) Get(ctx context.Context, id string) (*app.DeliveryView, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := deliveryView(d, s.clock())
	return &v, nil
}

func (s *deliveryService) List(ctx context.Context, projectID string) ([]app.DeliveryView, error) {
	list, err := s.store.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]app.DeliveryView, 0, len(list))
	for _, d := range list {
		out = append(out, deliveryView(d, now))
	}
	return out, nil
}

// Update stores edited supplier and schedule fields. The reminder latch is
// owned by the reminder scheduler and is not written here.
func (s *deliveryService) Update(ctx context.Context, d *domain.Delivery) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.UpdatedAt = s.clock()
	return s.store.Update(ctx, d)
}

func (s *deliveryService) MarkReleased(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.mutate(ctx, "delivery.mark_released", id, func(d *domain.Delivery, now time.Time) error {
		return d.MarkReleased(now)
	})
}

func (s *deliveryService) MarkDelivered(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.mutate(ctx, "delivery.mark_delivered", id, func(d *domain.Delivery, now time.Time) error {
		return d.MarkDelivered(now)
	})
}

func (s *deliveryService) Reschedule(ctx context.Context, id string, eta time.Time) (*domain.Delivery, error) {
	return s.mutate(ctx, "delivery.reschedule", id, func(d *domain.Delivery, now time.Time) error {
		d.Reschedule(eta, now)
		return nil
	})
}

func (s *deliveryService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delivery.delete", s.clock(), map[string]any{"delivery_id": id}, &err)

	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.CreatedByID != s.actor.UserID {
		return fmt.Errorf("delete delivery %s: only the creator may delete it: %w", id, domain.ErrForbidden)
	}
	return s.store.Delete(ctx, id)
}

func (s *deliveryService) mutate(ctx context.Context, name, id string, fn func(*domain.Delivery, time.Time) error) (d *domain.Delivery, err error) {
	defer observe(ctx, s.observer, name, s.clock(), map[string]any{"delivery_id": id}, &err)

	d, err = s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d, s.clock()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func deliveryView(d *domain.Delivery, now time.Time) app.DeliveryView {
	return app.DeliveryView{
		Delivery:     d,
		Status:       d.DerivedStatus(now),
		ArrivingSoon: d.ArrivingSoon(now),
	}
}
