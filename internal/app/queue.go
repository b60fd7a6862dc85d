package app

import (
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// QueueFilter selects which item types the PM queue includes.
type QueueFilter string

const (
	QueueAll    QueueFilter = "all"
	QueueQuotes QueueFilter = "quote_request"
	QueueDrafts QueueFilter = "draft_project"
)

const (
	DefaultQueueLimit      = 50
	MaxQueueLimit          = 200
	DefaultDailyReportDays = 7
)

// ParseQueueFilter maps user input onto a QueueFilter. Empty means all.
func ParseQueueFilter(s string) (QueueFilter, error) {
	switch QueueFilter(s) {
	case "", QueueAll:
		return QueueAll, nil
	case QueueQuotes, QueueDrafts:
		return QueueFilter(s), nil
	}
	return "", &RequestError{Code: ErrCodeInvalidFilter, Message: "unknown queue filter " + s}
}

// Includes reports whether items of type t pass the filter.
func (f QueueFilter) Includes(t domain.QueueItemType) bool {
	switch f {
	case "", QueueAll:
		return true
	case QueueQuotes:
		return t == domain.QueueItemQuote
	case QueueDrafts:
		return t == domain.QueueItemDraft
	}
	return false
}

type QueueRequest struct {
	Filter QueueFilter
	Offset int
	Limit  int

	// Dashboard variant: merge daily reports filed in the last N days.
	IncludeDailyReports bool
	DailyReportDays     int
}

func NewQueueRequest() QueueRequest {
	return QueueRequest{Filter: QueueAll, Limit: DefaultQueueLimit}
}

// Normalized clamps paging to the accepted range.
func (r QueueRequest) Normalized() QueueRequest {
	if r.Filter == "" {
		r.Filter = QueueAll
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.Limit <= 0 {
		r.Limit = DefaultQueueLimit
	}
	if r.Limit > MaxQueueLimit {
		r.Limit = MaxQueueLimit
	}
	if r.IncludeDailyReports && r.DailyReportDays <= 0 {
		r.DailyReportDays = DefaultDailyReportDays
	}
	return r
}

// QueueItem is the read-only projection shown in the PM queue.
type QueueItem struct {
	ItemType    domain.QueueItemType
	ID          string
	Title       string
	Description string
	SubmittedBy string
	SubmittedAt time.Time
	Urgency     domain.Urgency
	Status      string
	Address     string
}

type QueuePage struct {
	Items     []QueueItem
	Total     int
	Offset    int
	Limit     int
	FetchedAt time.Time
}

type QueueStats struct {
	DraftProjects     int
	PendingQuotes     int
	InReviewQuotes    int
	TotalActionNeeded int
	FetchedAt         time.Time
}

// QueueView carries the items and stats reads side by side. Each half has
// its own error and FetchedAt so one failing never hides the other.
type QueueView struct {
	Items    *QueuePage
	ItemsErr error
	Stats    *QueueStats
	StatsErr error
}

// Degraded reports whether either half failed.
func (v QueueView) Degraded() bool {
	return v.ItemsErr != nil || v.StatsErr != nil
}
