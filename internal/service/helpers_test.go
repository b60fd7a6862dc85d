package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

var (
	testNow   = time.Date(2026, 1, 18, 15, 30, 0, 0, time.UTC)
	fieldUser = domain.Actor{UserID: "u-field", Name: "Sam Field", Role: domain.RoleForeman}
	pmUser    = domain.Actor{UserID: "u-pm", Name: "Pat Office", Role: domain.RoleProjectManager}
)

func fixedClock() time.Time { return testNow }

func setupBackend(t *testing.T) (*backend.Local, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	local := backend.NewLocal(database, testutil.NewTestUoW(database)).WithClock(fixedClock)
	return local, database
}

// countingQuotes records which writes actually reached the backend.
type countingQuotes struct {
	backend.Quotes
	mu      sync.Mutex
	creates int
	updates int
}

func (c *countingQuotes) CreateQuote(ctx context.Context, q *domain.QuoteRequest, key string) (*domain.QuoteRequest, error) {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.Quotes.CreateQuote(ctx, q, key)
}

func (c *countingQuotes) UpdateQuote(ctx context.Context, id string, u backend.QuoteUpdate) (*domain.QuoteRequest, error) {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.Quotes.UpdateQuote(ctx, id, u)
}

type recordingNotifier struct {
	mu    sync.Mutex
	fired []app.Reminder
}

func (n *recordingNotifier) Notify(_ context.Context, r app.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fired = append(n.fired, r)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.fired)
}

type recordingUseCaseObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingUseCaseObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}
