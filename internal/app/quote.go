package app

import "github.com/alexanderramin/fieldbridge/internal/domain"

const (
	DefaultMyQuotesLimit = 20
	MaxMyQuotesLimit     = 100
)

type SubmitQuoteRequest struct {
	Title             string
	Description       string
	Address           string
	City              string
	State             string
	Latitude          *float64
	Longitude         *float64
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	Photos            []string
	ScopeNotes        string
	Urgency           domain.Urgency
	PreferredSchedule string

	// IdempotencyKey is generated when empty. Reuse it to resubmit after an
	// unknown outcome.
	IdempotencyKey string
}

type DecideQuoteRequest struct {
	QuoteID string
	Outcome domain.QuoteStatus
	Amount  *float64
	Notes   string
}

type ListQuotesRequest struct {
	Statuses     []domain.QuoteStatus
	Urgencies    []domain.Urgency
	Mine         bool
	AssignedToMe bool
	Offset       int
	Limit        int
}

// ConvertResult identifies the project a quote became.
type ConvertResult struct {
	ProjectID     string
	ProjectNumber string
}

type CreateDraftRequest struct {
	Name          string
	Description   string
	Address       string
	City          string
	State         string
	ClientName    string
	ContractValue *float64

	IdempotencyKey string
}
