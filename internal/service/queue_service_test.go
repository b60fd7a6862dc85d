package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/repository"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

func newQueueService(src QueueSources) *queueService {
	svc := NewQueueService(src).(*queueService)
	svc.clock = fixedClock
	return svc
}

// statsDown serves everything but queue stats.
type statsDown struct {
	*backend.Local
}

func (statsDown) QueueStats(context.Context) (*app.QueueStats, error) {
	return nil, backend.ErrNetwork
}

func TestQueueService_MergesNewestFirst(t *testing.T) {
	local, database := setupBackend(t)
	ctx := context.Background()
	quotes := repository.NewSQLiteQuoteRepo(database)
	projects := repository.NewSQLiteProjectRepo(database)

	oldQuote := testutil.NewTestQuote("Old quote", testutil.WithQuoteCreatedAt(testNow.Add(-3*time.Hour)))
	newQuote := testutil.NewTestQuote("New quote",
		testutil.WithQuoteStatus(domain.QuoteInReview),
		testutil.WithQuoteCreatedAt(testNow.Add(-1*time.Hour)))
	quoted := testutil.NewTestQuote("Already priced", testutil.WithQuoteCreatedAt(testNow), testutil.WithQuoted(100))
	draft := testutil.NewTestProject("Quick setup",
		testutil.WithProjectStatus(domain.ProjectDraft),
		testutil.WithProjectCreatedAt(testNow.Add(-2*time.Hour)))
	active := testutil.NewTestProject("Running job", testutil.WithProjectCreatedAt(testNow))
	for _, q := range []*domain.QuoteRequest{oldQuote, newQuote, quoted} {
		require.NoError(t, quotes.Create(ctx, q))
	}
	for _, p := range []*domain.Project{draft, active} {
		require.NoError(t, projects.Create(ctx, p))
	}

	page, err := newQueueService(local).ListQueue(ctx, app.NewQueueRequest())
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{newQuote.ID, draft.ID, oldQuote.ID},
		[]string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
	assert.Equal(t, domain.QueueItemDraft, page.Items[1].ItemType)
	assert.Equal(t, "draft", page.Items[1].Status)
	assert.Empty(t, page.Items[1].Urgency)
	assert.Equal(t, testNow, page.FetchedAt)
}

func TestQueueService_FilterAndPaging(t *testing.T) {
	local, database := setupBackend(t)
	ctx := context.Background()
	quotes := repository.NewSQLiteQuoteRepo(database)
	for i := 0; i < 5; i++ {
		q := testutil.NewTestQuote("Quote", testutil.WithQuoteCreatedAt(testNow.Add(-time.Duration(i)*time.Minute)))
		require.NoError(t, quotes.Create(ctx, q))
	}
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx,
		testutil.NewTestProject("Draft", testutil.WithProjectStatus(domain.ProjectDraft))))

	svc := newQueueService(local)
	page, err := svc.ListQueue(ctx, app.QueueRequest{Filter: app.QueueQuotes, Offset: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Items, 2)
	for _, it := range page.Items {
		assert.Equal(t, domain.QueueItemQuote, it.ItemType)
	}

	past, err := svc.ListQueue(ctx, app.QueueRequest{Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.Equal(t, 6, past.Total)

	_, err = svc.ListQueue(ctx, app.QueueRequest{Filter: "rfi"})
	var reqErr *app.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, app.ErrCodeInvalidFilter, reqErr.Code)
}

func TestQueueService_LoadKeepsItemsWhenStatsFail(t *testing.T) {
	local, database := setupBackend(t)
	ctx := context.Background()
	require.NoError(t, repository.NewSQLiteQuoteRepo(database).Create(ctx, testutil.NewTestQuote("Waiting")))

	view := newQueueService(statsDown{local}).Load(ctx, app.NewQueueRequest())
	assert.True(t, view.Degraded())
	require.NoError(t, view.ItemsErr)
	require.NotNil(t, view.Items)
	assert.Len(t, view.Items.Items, 1)
	assert.ErrorIs(t, view.StatsErr, backend.ErrNetwork)
	assert.Nil(t, view.Stats)
}

func TestQueueService_StatsMatchItems(t *testing.T) {
	local, database := setupBackend(t)
	ctx := context.Background()
	quotes := repository.NewSQLiteQuoteRepo(database)
	require.NoError(t, quotes.Create(ctx, testutil.NewTestQuote("a")))
	require.NoError(t, quotes.Create(ctx, testutil.NewTestQuote("b", testutil.WithQuoteStatus(domain.QuoteInReview))))
	require.NoError(t, quotes.Create(ctx, testutil.NewTestQuote("c", testutil.WithQuoteStatus(domain.QuoteDeclined))))

	view := newQueueService(local).Load(ctx, app.NewQueueRequest())
	require.False(t, view.Degraded())
	assert.Equal(t, 1, view.Stats.PendingQuotes)
	assert.Equal(t, 1, view.Stats.InReviewQuotes)
	assert.Equal(t, view.Stats.TotalActionNeeded, view.Items.Total)
}

func TestQueueService_DashboardIncludesRecentReports(t *testing.T) {
	local, database := setupBackend(t)
	ctx := context.Background()
	project := testutil.NewTestProject("Tower")
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx, project))
	reports := repository.NewSQLiteDailyReportRepo(database)
	recent := testutil.NewTestDailyReport(project.ID, "u-field", testNow.AddDate(0, 0, -2))
	stale := testutil.NewTestDailyReport(project.ID, "u-field", testNow.AddDate(0, 0, -10))
	require.NoError(t, reports.Create(ctx, recent))
	require.NoError(t, reports.Create(ctx, stale))

	svc := newQueueService(local)
	view := svc.LoadDashboard(ctx, app.NewQueueRequest())
	require.NoError(t, view.ItemsErr)
	require.Len(t, view.Items.Items, 1)
	assert.Equal(t, domain.QueueItemDailyReport, view.Items.Items[0].ItemType)
	assert.Equal(t, recent.ID, view.Items.Items[0].ID)

	plain, err := svc.ListQueue(ctx, app.NewQueueRequest())
	require.NoError(t, err)
	assert.Empty(t, plain.Items)
}
