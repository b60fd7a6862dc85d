package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteQuoteRepo(db)
	ctx := context.Background()

	lat, lng := 30.2672, -97.7431
	q := testutil.NewTestQuote("Boiler replacement", testutil.WithCustomer("Acme Corp", "12 Elm St"))
	q.Latitude, q.Longitude = &lat, &lng
	q.Photos = []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}
	q.Urgency = domain.UrgencyRush
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boiler replacement", got.Title)
	assert.Equal(t, domain.QuotePending, got.Status)
	assert.Equal(t, domain.UrgencyRush, got.Urgency)
	assert.Equal(t, "Acme Corp", got.CustomerName)
	assert.Equal(t, q.Photos, got.Photos)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, lat, *got.Latitude, 1e-9)
	assert.Nil(t, got.QuotedAmount)
	assert.WithinDuration(t, q.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestQuoteRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteQuoteRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestQuoteRepo_List_FiltersAndOrdersNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteQuoteRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	old := testutil.NewTestQuote("old", testutil.WithQuoteCreatedAt(base), testutil.WithSubmittedBy("u1"))
	mid := testutil.NewTestQuote("mid", testutil.WithQuoteCreatedAt(base.Add(time.Hour)), testutil.WithQuoteStatus(domain.QuoteInReview))
	quoted := testutil.NewTestQuote("quoted", testutil.WithQuoteCreatedAt(base.Add(2*time.Hour)), testutil.WithQuoted(500))
	recent := testutil.NewTestQuote("recent", testutil.WithQuoteCreatedAt(base.Add(3*time.Hour)), testutil.WithSubmittedBy("u1"))
	for _, q := range []*domain.QuoteRequest{old, mid, quoted, recent} {
		require.NoError(t, repo.Create(ctx, q))
	}

	open, err := repo.List(ctx, QuoteFilter{Statuses: []domain.QuoteStatus{domain.QuotePending, domain.QuoteInReview}})
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, []string{"recent", "mid", "old"}, []string{open[0].Title, open[1].Title, open[2].Title})

	mine, err := repo.List(ctx, QuoteFilter{SubmittedByID: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	page, err := repo.List(ctx, QuoteFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "quoted", page[0].Title)
	assert.Equal(t, "mid", page[1].Title)
}

func TestQuoteRepo_UpdateIfStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteQuoteRepo(db)
	ctx := context.Background()

	q := testutil.NewTestQuote("Roof repair")
	require.NoError(t, repo.Create(ctx, q))

	now := time.Now().UTC()
	require.NoError(t, q.Decide(domain.QuoteQuoted, domain.Float64Ptr(1250), "two day job", now))

	ok, err := repo.UpdateIfStatus(ctx, q, domain.QuotePending)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, got.Status)
	require.NotNil(t, got.QuotedAmount)
	assert.Equal(t, 1250.0, *got.QuotedAmount)
	require.NotNil(t, got.QuotedAt)
	assert.Equal(t, "two day job", got.QuoteNotes)

	// A second writer still holding the pending snapshot loses.
	stale := *got
	stale.Status = domain.QuoteDeclined
	stale.QuotedAmount = nil
	ok, err = repo.UpdateIfStatus(ctx, &stale, domain.QuotePending)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, got.Status)
}

func TestQuoteRepo_CountByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteQuoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote("a")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote("b")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote("c", testutil.WithQuoteStatus(domain.QuoteInReview))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote("d", testutil.WithQuoteStatus(domain.QuoteDeclined))))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.QuotePending])
	assert.Equal(t, 1, counts[domain.QuoteInReview])
	assert.Equal(t, 1, counts[domain.QuoteDeclined])
	assert.Equal(t, 0, counts[domain.QuoteQuoted])
}
