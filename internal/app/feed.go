package app

import (
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// FeedTrigger names what started a blocker feed refresh.
type FeedTrigger string

const (
	TriggerSelect FeedTrigger = "select"
	TriggerManual FeedTrigger = "manual"
	TriggerPoll   FeedTrigger = "poll"
)

// FeedSnapshot is the blocker feed as last applied.
type FeedSnapshot struct {
	ProjectID   string
	Generation  uint64
	Items       []domain.BlockerItem
	RefreshedAt time.Time
	Trigger     FeedTrigger
}

// Reminder is one fired 24h delivery reminder.
type Reminder struct {
	DeliveryID string
	ProjectID  string
	Supplier   string
	PONumber   string
	ETA        time.Time
}

type ReminderResult struct {
	Evaluated int
	Fired     []Reminder
	// Skipped counts deliveries another evaluator latched first.
	Skipped int
}

// DeliveryView pairs a delivery with its read-time projections.
type DeliveryView struct {
	Delivery     *domain.Delivery
	Status       domain.DeliveryStatus
	ArrivingSoon bool
}
