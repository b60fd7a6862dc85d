package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func newQuoteService(q *countingQuotes, actor domain.Actor, observers ...UseCaseObserver) *quoteService {
	svc := NewQuoteService(q, actor, observers...).(*quoteService)
	svc.clock = fixedClock
	return svc
}

func TestQuoteService_SubmitShowsInQueue(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	obs := &recordingUseCaseObserver{}
	quotes := newQuoteService(&countingQuotes{Quotes: local}, fieldUser, obs)

	q, err := quotes.Submit(ctx, app.SubmitQuoteRequest{
		Title:       "Replace RTU",
		Description: "Roof unit down",
		Urgency:     domain.UrgencyEmergency,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.Equal(t, fieldUser.UserID, q.SubmittedByID)

	page, err := NewQueueService(local).ListQueue(ctx, app.NewQueueRequest())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, domain.QueueItemQuote, item.ItemType)
	assert.Equal(t, "pending", item.Status)
	assert.Equal(t, domain.UrgencyEmergency, item.Urgency)
	assert.Equal(t, "Sam Field", item.SubmittedBy)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "quote.submit", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, q.ID, obs.events[0].Fields["quote_id"])
}

func TestQuoteService_SubmitValidationNeverSent(t *testing.T) {
	local, _ := setupBackend(t)
	counting := &countingQuotes{Quotes: local}
	quotes := newQuoteService(counting, fieldUser)

	_, err := quotes.Submit(context.Background(), app.SubmitQuoteRequest{Title: "  ", Description: "No title"})
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, counting.creates)
}

func TestQuoteService_SubmitReusedKeyDedupes(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	quotes := newQuoteService(&countingQuotes{Quotes: local}, fieldUser)

	req := app.SubmitQuoteRequest{Title: "Gate repair", Description: "Hinge sheared", IdempotencyKey: "retry-me"}
	first, err := quotes.Submit(ctx, req)
	require.NoError(t, err)
	second, err := quotes.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	mine, err := quotes.ListMine(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestQuoteService_DecideTwice(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	field := newQuoteService(&countingQuotes{Quotes: local}, fieldUser)
	counting := &countingQuotes{Quotes: local}
	pm := newQuoteService(counting, pmUser)

	q, err := field.Submit(ctx, app.SubmitQuoteRequest{Title: "Dock leveler", Description: "Hydraulics"})
	require.NoError(t, err)

	quoted, err := pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteQuoted, Amount: domain.Float64Ptr(4200)})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, quoted.Status)

	_, err = pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteDeclined})
	assert.True(t, domain.IsInvalidTransition(err), "got %v", err)
	assert.Equal(t, 1, counting.updates, "rejected decision must not reach the backend")

	stored, err := pm.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, stored.Status)
	require.NotNil(t, stored.QuotedAmount)
	assert.Equal(t, 4200.0, *stored.QuotedAmount)
}

func TestQuoteService_DecideQuotedNeedsAmount(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	counting := &countingQuotes{Quotes: local}
	pm := newQuoteService(counting, pmUser)

	q, err := newQuoteService(&countingQuotes{Quotes: local}, fieldUser).
		Submit(ctx, app.SubmitQuoteRequest{Title: "Curb cut", Description: "ADA ramp"})
	require.NoError(t, err)

	_, err = pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteQuoted})
	assert.True(t, domain.IsValidation(err))

	_, err = pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteQuoted, Amount: domain.Float64Ptr(math.NaN())})
	assert.True(t, domain.IsValidation(err), "NaN amount must fail locally, got %v", err)
	assert.Zero(t, counting.updates)

	got, err := pm.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotePending, got.Status)
}

func TestQuoteService_TerminalQuotesRejectDecisions(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	pm := newQuoteService(&countingQuotes{Quotes: local}, pmUser)

	q, err := newQuoteService(&countingQuotes{Quotes: local}, fieldUser).
		Submit(ctx, app.SubmitQuoteRequest{Title: "Paint", Description: "Lobby"})
	require.NoError(t, err)
	_, err = pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteDeclined, Notes: "out of scope"})
	require.NoError(t, err)

	for _, outcome := range []domain.QuoteStatus{domain.QuoteQuoted, domain.QuoteDeclined} {
		_, err := pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: outcome, Amount: domain.Float64Ptr(1)})
		assert.True(t, domain.IsInvalidTransition(err), "outcome %s: got %v", outcome, err)
	}
	stored, err := pm.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteDeclined, stored.Status)
	assert.Nil(t, stored.QuotedAmount)
}

func TestQuoteService_AssignDefaultsToActor(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	pm := newQuoteService(&countingQuotes{Quotes: local}, pmUser)

	q, err := newQuoteService(&countingQuotes{Quotes: local}, fieldUser).
		Submit(ctx, app.SubmitQuoteRequest{Title: "Fence", Description: "Chain link"})
	require.NoError(t, err)

	assigned, err := pm.Assign(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteInReview, assigned.Status)
	assert.Equal(t, pmUser.UserID, assigned.AssignedToID)

	mine, err := pm.List(ctx, app.ListQuotesRequest{AssignedToMe: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, q.ID, mine[0].ID)
}

func TestQuoteService_ListRejectsUnknownStatus(t *testing.T) {
	local, _ := setupBackend(t)
	pm := newQuoteService(&countingQuotes{Quotes: local}, pmUser)

	_, err := pm.List(context.Background(), app.ListQuotesRequest{Statuses: []domain.QuoteStatus{"approved"}})
	assert.True(t, domain.IsValidation(err))
}

func TestConversionService_ConvertLeavesQueue(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	field := newQuoteService(&countingQuotes{Quotes: local}, fieldUser)
	pm := newQuoteService(&countingQuotes{Quotes: local}, pmUser)
	conv := NewConversionService(local)
	queue := NewQueueService(local)

	q, err := field.Submit(ctx, app.SubmitQuoteRequest{Title: "Storefront", Description: "Glazing", CustomerName: "Acme"})
	require.NoError(t, err)
	_, err = pm.Decide(ctx, app.DecideQuoteRequest{QuoteID: q.ID, Outcome: domain.QuoteQuoted, Amount: domain.Float64Ptr(9100)})
	require.NoError(t, err)

	before, err := queue.ListQueue(ctx, app.NewQueueRequest())
	require.NoError(t, err)
	assert.Empty(t, before.Items, "quoted quotes are no longer awaiting a decision")

	res, err := conv.ConvertWithKey(ctx, q.ID, "convert-once")
	require.NoError(t, err)
	assert.Equal(t, "Q1-20260118", res.ProjectNumber)

	replay, err := conv.ConvertWithKey(ctx, q.ID, "convert-once")
	require.NoError(t, err)
	assert.Equal(t, res.ProjectID, replay.ProjectID)

	_, err = conv.Convert(ctx, q.ID)
	assert.True(t, domain.IsInvalidTransition(err))

	after, err := queue.ListQueue(ctx, app.NewQueueRequest())
	require.NoError(t, err)
	for _, it := range after.Items {
		assert.NotEqual(t, q.ID, it.ID)
	}

	converted, err := pm.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteConverted, converted.Status)
	assert.Equal(t, res.ProjectID, converted.ConvertedProjectID)
}
