package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type quoteService struct {
	quotes   backend.Quotes
	actor    domain.Actor
	clock    func() time.Time
	observer UseCaseObserver
}

func NewQuoteService(quotes backend.Quotes, actor domain.Actor, observers ...UseCaseObserver) QuoteService {
	return &quoteService{
		quotes:   quotes,
		actor:    actor,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *quoteService) Submit(ctx context.Context, req app.SubmitQuoteRequest) (q *domain.QuoteRequest, err error) {
	fields := map[string]any{"urgency": string(req.Urgency)}
	defer observe(ctx, s.observer, "quote.submit", s.clock(), fields, &err)

	draft := &domain.QuoteRequest{
		Title:             req.Title,
		Description:       req.Description,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		CustomerEmail:     req.CustomerEmail,
		Photos:            req.Photos,
		ScopeNotes:        req.ScopeNotes,
		Urgency:           req.Urgency,
		PreferredSchedule: req.PreferredSchedule,
		SubmittedByID:     s.actor.UserID,
		SubmittedByName:   s.actor.Name,
	}
	if err := draft.PrepareSubmission(s.clock()); err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	fields["idempotency_key"] = key
	q, err = s.quotes.CreateQuote(ctx, draft, key)
	if err != nil {
		return nil, err
	}
	fields["quote_id"] = q.ID
	return q, nil
}

func (s *quoteService) Get(ctx context.Context, id string) (*domain.QuoteRequest, error) {
	return s.quotes.GetQuote(ctx, id)
}

func (s *quoteService) List(ctx context.Context, req app.ListQuotesRequest) ([]*domain.QuoteRequest, error) {
	q := backend.QuoteQuery{
		Statuses:  req.Statuses,
		Urgencies: req.Urgencies,
		Offset:    req.Offset,
		Limit:     req.Limit,
	}
	if req.Mine {
		q.SubmittedByID = s.actor.UserID
	}
	if req.AssignedToMe {
		q.AssignedToID = s.actor.UserID
	}
	for _, st := range req.Statuses {
		if !domain.ValidQuoteStatus(st) {
			return nil, domain.NewValidationError("status", "unknown quote status "+string(st))
		}
	}
	return s.quotes.ListQuotes(ctx, q)
}

func (s *quoteService) ListMine(ctx context.Context, statuses ...domain.QuoteStatus) ([]*domain.QuoteRequest, error) {
	return s.List(ctx, app.ListQuotesRequest{
		Statuses: statuses,
		Mine:     true,
		Limit:    app.DefaultMyQuotesLimit,
	})
}

func (s *quoteService) Assign(ctx context.Context, quoteID, assigneeID string) (*domain.QuoteRequest, error) {
	if assigneeID == "" {
		assigneeID = s.actor.UserID
	}
	if assigneeID == "" {
		return nil, domain.NewValidationError("assignee_id", "is required")
	}
	return s.quotes.AssignQuote(ctx, quoteID, assigneeID)
}

// Decide applies the decision to a fresh copy first so an illegal transition
// or missing amount never reaches the backend.
func (s *quoteService) Decide(ctx context.Context, req app.DecideQuoteRequest) (q *domain.QuoteRequest, err error) {
	fields := map[string]any{"quote_id": req.QuoteID, "outcome": string(req.Outcome)}
	defer observe(ctx, s.observer, "quote.decide", s.clock(), fields, &err)

	current, err := s.quotes.GetQuote(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}
	if err := current.Decide(req.Outcome, req.Amount, req.Notes, s.clock()); err != nil {
		return nil, err
	}
	return s.quotes.UpdateQuote(ctx, req.QuoteID, backend.QuoteUpdate{
		Status:       req.Outcome,
		QuotedAmount: req.Amount,
		QuoteNotes:   req.Notes,
	})
}
