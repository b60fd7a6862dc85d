package backend

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/repository"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

var fixedNow = time.Date(2026, 1, 18, 15, 30, 0, 0, time.UTC)

func newLocal(t *testing.T) (*Local, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	l := NewLocal(database, testutil.NewTestUoW(database)).WithClock(func() time.Time { return fixedNow })
	return l, database
}

func seedQuote(t *testing.T, database *sql.DB, q *domain.QuoteRequest) *domain.QuoteRequest {
	t.Helper()
	require.NoError(t, repository.NewSQLiteQuoteRepo(database).Create(context.Background(), q))
	return q
}

func TestLocal_CreateQuote_IdempotentReplay(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	in := &domain.QuoteRequest{Title: "Roof leak", Description: "Water at the north parapet", SubmittedByID: "u-field"}
	first, err := l.CreateQuote(ctx, in, "key-1")
	require.NoError(t, err)
	assert.Equal(t, domain.QuotePending, first.Status)
	assert.Equal(t, domain.UrgencyStandard, first.Urgency)

	again, err := l.CreateQuote(ctx, in, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	all, err := l.ListQuotes(ctx, QuoteQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocal_CreateQuote_ValidationStoresNothing(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	_, err := l.CreateQuote(ctx, &domain.QuoteRequest{Description: "no title"}, "key-1")
	assert.True(t, domain.IsValidation(err))

	all, err := l.ListQuotes(ctx, QuoteQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLocal_UpdateQuote_Decide(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	q := seedQuote(t, database, testutil.NewTestQuote("Deck repair"))

	got, err := l.UpdateQuote(ctx, q.ID, QuoteUpdate{Status: domain.QuoteQuoted, QuotedAmount: domain.Float64Ptr(18500), QuoteNotes: "incl. permits"})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, got.Status)

	stored, err := l.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QuotedAmount)
	assert.Equal(t, 18500.0, *stored.QuotedAmount)
	assert.Equal(t, "incl. permits", stored.QuoteNotes)

	_, err = l.UpdateQuote(ctx, q.ID, QuoteUpdate{Status: domain.QuoteDeclined})
	assert.True(t, domain.IsInvalidTransition(err))
}

func TestLocal_UpdateQuote_MissingIsNotFound(t *testing.T) {
	l, _ := newLocal(t)
	_, err := l.UpdateQuote(context.Background(), "nope", QuoteUpdate{Status: domain.QuoteDeclined})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_UpdateQuote_ConcurrentDecisionsOneWins(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	l := NewLocal(database, testutil.NewTestUoW(database))
	ctx := context.Background()
	q := seedQuote(t, database, testutil.NewTestQuote("Contested"))

	updates := []QuoteUpdate{
		{Status: domain.QuoteQuoted, QuotedAmount: domain.Float64Ptr(900)},
		{Status: domain.QuoteDeclined},
	}
	errs := make([]error, len(updates))
	var wg sync.WaitGroup
	for i, u := range updates {
		wg.Add(1)
		go func(i int, u QuoteUpdate) {
			defer wg.Done()
			_, errs[i] = l.UpdateQuote(ctx, q.ID, u)
		}(i, u)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, domain.IsInvalidTransition(err), "loser sees an invalid transition, got %v", err)
	}
	assert.Equal(t, 1, wins)

	stored, err := l.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	require.NoError(t, stored.CheckInvariants())
}

func TestLocal_AssignQuote(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	q := seedQuote(t, database, testutil.NewTestQuote("Gutter"))

	got, err := l.AssignQuote(ctx, q.ID, "u-pm")
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteInReview, got.Status)

	mine, err := l.ListQuotes(ctx, QuoteQuery{AssignedToID: "u-pm"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestLocal_ConvertQuote(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	q := seedQuote(t, database, testutil.NewTestQuote("Kitchen remodel",
		testutil.WithQuoted(42000), testutil.WithCustomer("Dana Ortiz", "12 Elm St")))

	res, err := l.ConvertQuote(ctx, q.ID, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Q1-20260118", res.ProjectNumber)

	p, err := l.GetProject(ctx, res.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectPlanning, p.Status)
	assert.Equal(t, "Kitchen remodel", p.Name)
	assert.Equal(t, "Dana Ortiz", p.ClientName)
	assert.Equal(t, q.ID, p.SourceQuoteID)
	require.NotNil(t, p.ContractValue)
	assert.Equal(t, 42000.0, *p.ContractValue)

	stored, err := l.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteConverted, stored.Status)
	assert.Equal(t, res.ProjectID, stored.ConvertedProjectID)

	replay, err := l.ConvertQuote(ctx, q.ID, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, res, replay)

	_, err = l.ConvertQuote(ctx, q.ID, "conv-2")
	assert.True(t, domain.IsInvalidTransition(err))

	projects, err := l.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1, "one project per quote")
}

func TestLocal_IdempotencyKeyScopedToOperation(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	q1 := seedQuote(t, database, testutil.NewTestQuote("Kitchen remodel", testutil.WithQuoted(42000)))
	q2 := seedQuote(t, database, testutil.NewTestQuote("Deck repair", testutil.WithQuoted(6500)))

	first, err := l.ConvertQuote(ctx, q1.ID, "shared")
	require.NoError(t, err)

	_, err = l.ConvertQuote(ctx, q2.ID, "shared")
	assert.True(t, domain.IsValidation(err), "a key from another quote must not replay its project, got %v", err)

	stored, err := l.GetQuote(ctx, q2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, stored.Status)

	_, err = l.CreateQuote(ctx, &domain.QuoteRequest{Title: "Gutters", Description: "Sagging", SubmittedByID: "u-field"}, "submit-1")
	require.NoError(t, err)
	_, err = l.ConvertQuote(ctx, q2.ID, "submit-1")
	assert.True(t, domain.IsValidation(err), "a create key must not be read as a project, got %v", err)

	res, err := l.ConvertQuote(ctx, q2.ID, "deck-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ProjectID, res.ProjectID)
}

func TestLocal_ConvertQuote_RequiresQuoted(t *testing.T) {
	l, database := newLocal(t)
	q := seedQuote(t, database, testutil.NewTestQuote("Pending one"))

	_, err := l.ConvertQuote(context.Background(), q.ID, "")
	assert.True(t, domain.IsInvalidTransition(err))
}

func TestLocal_ConvertQuote_RollsBackWhenQuoteWriteFails(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	q := seedQuote(t, database, testutil.NewTestQuote("Fence", testutil.WithQuoted(3100)))

	failing := &testutil.FailingExecUoW{DB: database, Match: "UPDATE quote_requests", FailOn: 1, Err: errors.New("disk I/O error")}
	l := NewLocal(database, failing).WithClock(func() time.Time { return fixedNow })

	_, err := l.ConvertQuote(ctx, q.ID, "conv-1")
	require.Error(t, err)

	projects, err := l.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects, "project insert rolled back")

	stored, err := l.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteQuoted, stored.Status)

	retry := NewLocal(database, testutil.NewTestUoW(database)).WithClock(func() time.Time { return fixedNow })
	res, err := retry.ConvertQuote(ctx, q.ID, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Q1-20260118", res.ProjectNumber, "sequence allocation rolled back too")
}

func TestLocal_CreateProject_Draft(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	p, err := l.CreateProject(ctx, &domain.Project{Name: "Quick setup", Number: "ignored", Status: domain.ProjectActive}, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectDraft, p.Status)
	assert.Empty(t, p.Number)

	again, err := l.CreateProject(ctx, &domain.Project{Name: "Quick setup"}, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	published, err := l.PublishProject(ctx, p.ID, domain.ProjectActive)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectActive, published.Status)

	_, err = l.PublishProject(ctx, p.ID, domain.ProjectPlanning)
	assert.True(t, domain.IsInvalidTransition(err))
}

func TestLocal_TaskActions(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	proj := testutil.NewTestProject("Site")
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx, proj))

	task, err := l.CreateTask(ctx, &domain.Task{ProjectID: proj.ID, Title: "Pour footing", AssigneeID: "u-field", CreatedByID: "u-pe"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, task.Status)

	_, err = l.AcknowledgeTask(ctx, task.ID, domain.Actor{UserID: "u-pm", Role: domain.RoleProjectManager})
	assert.ErrorIs(t, err, ErrForbidden)

	field := domain.Actor{UserID: "u-field", Role: domain.RoleForeman}
	_, err = l.AcknowledgeTask(ctx, task.ID, field)
	require.NoError(t, err)
	blocked, err := l.BlockTask(ctx, task.ID, field)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskBlocked, blocked.Status)

	open, err := l.ListTasks(ctx, TaskQuery{AssigneeID: "u-field", Statuses: []domain.TaskStatus{domain.TaskBlocked}})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	restored, err := l.UnblockTask(ctx, task.ID, field)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAcknowledged, restored.Status)

	_, err = l.ListTasks(ctx, TaskQuery{})
	assert.True(t, domain.IsValidation(err))
}

func TestLocal_CreateDailyReport_DuplicateIsValidation(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	proj := testutil.NewTestProject("Site")
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx, proj))

	day := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	first, err := l.CreateDailyReport(ctx, testutil.NewTestDailyReport(proj.ID, "u-field", day), "dr-1")
	require.NoError(t, err)

	replay, err := l.CreateDailyReport(ctx, testutil.NewTestDailyReport(proj.ID, "u-field", day), "dr-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)

	_, err = l.CreateDailyReport(ctx, testutil.NewTestDailyReport(proj.ID, "u-field", day), "dr-2")
	assert.True(t, domain.IsValidation(err))

	since := day.AddDate(0, 0, -1)
	recent, err := l.ListDailyReports(ctx, DailyReportQuery{ProjectID: proj.ID, Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestLocal_QueueStats(t *testing.T) {
	l, database := newLocal(t)
	ctx := context.Background()
	seedQuote(t, database, testutil.NewTestQuote("a"))
	seedQuote(t, database, testutil.NewTestQuote("b"))
	seedQuote(t, database, testutil.NewTestQuote("c", testutil.WithQuoteStatus(domain.QuoteInReview)))
	seedQuote(t, database, testutil.NewTestQuote("d", testutil.WithQuoted(10)))
	_, err := l.CreateProject(ctx, &domain.Project{Name: "draft"}, "")
	require.NoError(t, err)

	stats, err := l.QueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingQuotes)
	assert.Equal(t, 1, stats.InReviewQuotes)
	assert.Equal(t, 1, stats.DraftProjects)
	assert.Equal(t, 4, stats.TotalActionNeeded)
	assert.Equal(t, fixedNow, stats.FetchedAt)
}
