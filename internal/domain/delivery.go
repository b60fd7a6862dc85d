package domain

import (
	"strings"
	"time"
)

// ReminderWindow is how far ahead of the estimated arrival a reminder fires.
const ReminderWindow = 24 * time.Hour

// Delivery tracks a material shipment to a project site.
type Delivery struct {
	ID          string
	ProjectID   string
	CreatedByID string

	SupplierName    string
	SupplierContact string
	SupplierPhone   string

	PONumber       string
	Contents       []string
	Carrier        string
	TrackingNumber string

	OrderDate        *time.Time
	ReleaseDate      *time.Time
	EstimatedArrival *time.Time
	ActualArrival    *time.Time

	IsReleased  bool
	IsDelivered bool

	// Notify24h opts the delivery into the pre-arrival reminder.
	Notify24h bool
	// NotificationSent latches once the reminder has fired. It never resets.
	NotificationSent bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields required to record a delivery.
func (d *Delivery) Validate() error {
	if strings.TrimSpace(d.ProjectID) == "" {
		return NewValidationError("project_id", "is required")
	}
	if strings.TrimSpace(d.SupplierName) == "" {
		return NewValidationError("supplier", "is required")
	}
	return nil
}

// DerivedStatus projects the stored booleans onto a display status.
// Precedence is fixed: delivered, then late, then in_transit, then pending.
func (d *Delivery) DerivedStatus(now time.Time) DeliveryStatus {
	if d.IsDelivered {
		return DeliveryDelivered
	}
	if d.EstimatedArrival != nil && d.EstimatedArrival.Before(startOfDay(now)) {
		return DeliveryLate
	}
	if d.IsReleased {
		return DeliveryInTransit
	}
	return DeliveryPending
}

// ArrivingSoon is the read-time "arriving within 24h" indicator. It ignores
// the reminder latch, so it can still be true after the reminder fired.
func (d *Delivery) ArrivingSoon(now time.Time) bool {
	if d.EstimatedArrival == nil {
		return false
	}
	until := d.EstimatedArrival.Sub(now)
	return until > 0 && until <= ReminderWindow
}

// ReminderDue reports whether the 24h reminder must fire at now.
func (d *Delivery) ReminderDue(now time.Time) bool {
	if !d.Notify24h || d.NotificationSent || d.IsDelivered {
		return false
	}
	return d.ArrivingSoon(now)
}

// MarkReleased records that the supplier has shipped.
func (d *Delivery) MarkReleased(now time.Time) error {
	if d.IsReleased || d.IsDelivered {
		return &InvalidTransitionError{Entity: "delivery", ID: d.ID, From: string(d.DerivedStatus(now)), To: string(DeliveryInTransit)}
	}
	d.IsReleased = true
	if d.ReleaseDate == nil {
		d.ReleaseDate = &now
	}
	d.UpdatedAt = now
	return nil
}

// MarkDelivered records arrival on site.
func (d *Delivery) MarkDelivered(now time.Time) error {
	if d.IsDelivered {
		return &InvalidTransitionError{Entity: "delivery", ID: d.ID, From: string(DeliveryDelivered), To: string(DeliveryDelivered)}
	}
	d.IsDelivered = true
	if d.ActualArrival == nil {
		d.ActualArrival = &now
	}
	d.UpdatedAt = now
	return nil
}

// Reschedule moves the estimated arrival. The reminder latch is kept as is.
func (d *Delivery) Reschedule(eta time.Time, now time.Time) {
	d.EstimatedArrival = &eta
	d.UpdatedAt = now
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}
