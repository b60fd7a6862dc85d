package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/repository"
)

// Idempotency operations recorded alongside the resource they produced.
const (
	OpCreateQuote       = "create_quote"
	OpConvertQuote      = "convert_quote"
	OpCreateProject     = "create_project"
	OpCreateDailyReport = "create_daily_report"
)

// Local serves the office API operations straight from the SQLite store.
// It backs the HTTP server and single-machine use of the CLI.
type Local struct {
	conn db.DBTX
	uow  db.UnitOfWork
	now  func() time.Time
}

var _ Backend = (*Local)(nil)

// NewLocal creates a Local over conn. Writes spanning several tables run
// inside uow.
func NewLocal(conn db.DBTX, uow db.UnitOfWork) *Local {
	return &Local{conn: conn, uow: uow, now: func() time.Time { return time.Now().UTC() }}
}

// querier is the transaction ctx carries, or the pool outside one.
func (l *Local) querier(ctx context.Context) db.DBTX {
	return db.Conn(ctx, l.conn)
}

// WithClock overrides the time source.
func (l *Local) WithClock(now func() time.Time) *Local {
	l.now = now
	return l
}

func (l *Local) ListQuotes(ctx context.Context, q QuoteQuery) ([]*domain.QuoteRequest, error) {
	return repository.NewSQLiteQuoteRepo(l.querier(ctx)).List(ctx, repository.QuoteFilter{
		Statuses:      q.Statuses,
		Urgencies:     q.Urgencies,
		SubmittedByID: q.SubmittedByID,
		AssignedToID:  q.AssignedToID,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
}

func (l *Local) GetQuote(ctx context.Context, id string) (*domain.QuoteRequest, error) {
	return repository.NewSQLiteQuoteRepo(l.querier(ctx)).GetByID(ctx, id)
}

func (l *Local) CreateQuote(ctx context.Context, q *domain.QuoteRequest, idempotencyKey string) (*domain.QuoteRequest, error) {
	var created *domain.QuoteRequest
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		quotes := repository.NewSQLiteQuoteRepo(tx)
		idem := repository.NewSQLiteIdempotencyRepo(tx)

		if existing, err := lookupKey(ctx, idem, idempotencyKey, OpCreateQuote); err != nil || existing != "" {
			if err != nil {
				return err
			}
			created, err = quotes.GetByID(ctx, existing)
			return err
		}

		cp := *q
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		if err := cp.PrepareSubmission(l.now()); err != nil {
			return err
		}
		if err := quotes.Create(ctx, &cp); err != nil {
			return err
		}
		if err := recordKey(ctx, idem, idempotencyKey, OpCreateQuote, cp.ID); err != nil {
			return err
		}
		created = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (l *Local) UpdateQuote(ctx context.Context, id string, u QuoteUpdate) (*domain.QuoteRequest, error) {
	return l.mutateQuote(ctx, id, func(q *domain.QuoteRequest, now time.Time) error {
		return q.Decide(u.Status, u.QuotedAmount, u.QuoteNotes, now)
	})
}

func (l *Local) AssignQuote(ctx context.Context, id, assigneeID string) (*domain.QuoteRequest, error) {
	return l.mutateQuote(ctx, id, func(q *domain.QuoteRequest, now time.Time) error {
		return q.Assign(assigneeID, now)
	})
}

// mutateQuote applies fn and writes the result only if no other writer moved
// the quote in between. The loser sees an InvalidTransition from the status
// it lost to.
func (l *Local) mutateQuote(ctx context.Context, id string, fn func(*domain.QuoteRequest, time.Time) error) (*domain.QuoteRequest, error) {
	quotes := repository.NewSQLiteQuoteRepo(l.querier(ctx))
	q, err := quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := q.Status
	if err := fn(q, l.now()); err != nil {
		return nil, err
	}
	ok, err := quotes.UpdateIfStatus(ctx, q, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.lostRace(ctx, quotes, id, q.Status)
	}
	return q, nil
}

func (l *Local) lostRace(ctx context.Context, quotes repository.QuoteRepo, id string, to domain.QuoteStatus) error {
	current, err := quotes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.InvalidTransitionError{Entity: "quote", ID: id, From: string(current.Status), To: string(to)}
}

// ConvertQuote creates the planning project for a quoted request and closes
// the quote against it. Both writes commit together or not at all.
func (l *Local) ConvertQuote(ctx context.Context, id, idempotencyKey string) (*app.ConvertResult, error) {
	var result *app.ConvertResult
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		quotes := repository.NewSQLiteQuoteRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)
		seqs := repository.NewSQLiteProjectSequenceRepo(tx)
		idem := repository.NewSQLiteIdempotencyRepo(tx)

		if existing, err := lookupKey(ctx, idem, idempotencyKey, OpConvertQuote); err != nil || existing != "" {
			if err != nil {
				return err
			}
			p, err := projects.GetByID(ctx, existing)
			if err != nil {
				return err
			}
			if p.SourceQuoteID != id {
				return domain.NewValidationError("idempotency_key", "was already used to convert another quote")
			}
			result = &app.ConvertResult{ProjectID: p.ID, ProjectNumber: p.Number}
			return nil
		}

		q, err := quotes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if q.Status != domain.QuoteQuoted {
			return &domain.InvalidTransitionError{Entity: "quote", ID: id, From: string(q.Status), To: string(domain.QuoteConverted)}
		}

		now := l.now()
		seq, err := seqs.Next(ctx, db.ProjectNumberScope)
		if err != nil {
			return err
		}
		p, err := domain.NewProjectFromQuote(q, uuid.New().String(), domain.ProjectNumber(seq, now), now)
		if err != nil {
			return err
		}
		p.CreatedByID = q.AssignedToID
		if err := projects.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &domain.InvalidTransitionError{Entity: "quote", ID: id, From: string(domain.QuoteConverted), To: string(domain.QuoteConverted)}
			}
			return err
		}

		if err := q.MarkConverted(p.ID, now); err != nil {
			return err
		}
		ok, err := quotes.UpdateIfStatus(ctx, q, domain.QuoteQuoted)
		if err != nil {
			return err
		}
		if !ok {
			return l.lostRace(ctx, quotes, id, domain.QuoteConverted)
		}
		if err := recordKey(ctx, idem, idempotencyKey, OpConvertQuote, p.ID); err != nil {
			return err
		}
		result = &app.ConvertResult{ProjectID: p.ID, ProjectNumber: p.Number}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Local) ListProjects(ctx context.Context, statuses ...domain.ProjectStatus) ([]*domain.Project, error) {
	return repository.NewSQLiteProjectRepo(l.querier(ctx)).List(ctx, repository.ProjectFilter{Statuses: statuses})
}

func (l *Local) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return repository.NewSQLiteProjectRepo(l.querier(ctx)).GetByID(ctx, id)
}

// CreateProject records a Quick Setup draft.
func (l *Local) CreateProject(ctx context.Context, p *domain.Project, idempotencyKey string) (*domain.Project, error) {
	var created *domain.Project
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		idem := repository.NewSQLiteIdempotencyRepo(tx)

		if existing, err := lookupKey(ctx, idem, idempotencyKey, OpCreateProject); err != nil || existing != "" {
			if err != nil {
				return err
			}
			created, err = projects.GetByID(ctx, existing)
			return err
		}

		cp := *p
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		cp.Number = ""
		cp.SourceQuoteID = ""
		if err := cp.PrepareDraft(l.now()); err != nil {
			return err
		}
		if err := projects.Create(ctx, &cp); err != nil {
			return err
		}
		if err := recordKey(ctx, idem, idempotencyKey, OpCreateProject, cp.ID); err != nil {
			return err
		}
		created = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (l *Local) PublishProject(ctx context.Context, id string, to domain.ProjectStatus) (*domain.Project, error) {
	projects := repository.NewSQLiteProjectRepo(l.querier(ctx))
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Publish(to, l.now()); err != nil {
		return nil, err
	}
	if err := projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Local) ListTasks(ctx context.Context, q TaskQuery) ([]*domain.Task, error) {
	tasks := repository.NewSQLiteTaskRepo(l.querier(ctx))
	switch {
	case q.ProjectID != "":
		list, err := tasks.ListByProject(ctx, q.ProjectID, q.Statuses...)
		if err != nil {
			return nil, err
		}
		if q.AssigneeID == "" {
			return list, nil
		}
		var mine []*domain.Task
		for _, t := range list {
			if t.AssigneeID == q.AssigneeID {
				mine = append(mine, t)
			}
		}
		return mine, nil
	case q.AssigneeID != "":
		list, err := tasks.ListByAssignee(ctx, q.AssigneeID)
		if err != nil {
			return nil, err
		}
		return filterTaskStatus(list, q.Statuses), nil
	default:
		return nil, domain.NewValidationError("project_id", "project or assignee is required")
	}
}

func filterTaskStatus(tasks []*domain.Task, statuses []domain.TaskStatus) []*domain.Task {
	if len(statuses) == 0 {
		return tasks
	}
	want := make(map[domain.TaskStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []*domain.Task
	for _, t := range tasks {
		if want[t.Status] {
			out = append(out, t)
		}
	}
	return out
}

func (l *Local) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return repository.NewSQLiteTaskRepo(l.querier(ctx)).GetByID(ctx, id)
}

func (l *Local) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	cp := *t
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if err := cp.PrepareNew(l.now()); err != nil {
		return nil, err
	}
	if err := repository.NewSQLiteTaskRepo(l.querier(ctx)).Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (l *Local) AcknowledgeTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return l.mutateTask(ctx, id, func(t *domain.Task, now time.Time) error { return t.Acknowledge(actor, now) })
}

func (l *Local) StartTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return l.mutateTask(ctx, id, func(t *domain.Task, now time.Time) error { return t.Start(actor, now) })
}

func (l *Local) CompleteTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return l.mutateTask(ctx, id, func(t *domain.Task, now time.Time) error { return t.Complete(actor, now) })
}

func (l *Local) BlockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return l.mutateTask(ctx, id, func(t *domain.Task, now time.Time) error { return t.Block(actor, now) })
}

func (l *Local) UnblockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return l.mutateTask(ctx, id, func(t *domain.Task, now time.Time) error { return t.Unblock(actor, now) })
}

func (l *Local) mutateTask(ctx context.Context, id string, fn func(*domain.Task, time.Time) error) (*domain.Task, error) {
	var out *domain.Task
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(t, l.now()); err != nil {
			return err
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Local) ListRFIs(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error) {
	return repository.NewSQLiteRFIRepo(l.querier(ctx)).ListByProject(ctx, projectID, statuses...)
}

func (l *Local) CreateRFI(ctx context.Context, r *domain.RFI) (*domain.RFI, error) {
	cp := *r
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	now := l.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	if err := repository.NewSQLiteRFIRepo(l.querier(ctx)).Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (l *Local) ListConstraints(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error) {
	return repository.NewSQLiteConstraintRepo(l.querier(ctx)).ListByProject(ctx, projectID, resolved)
}

func (l *Local) CreateConstraint(ctx context.Context, c *domain.Constraint) (*domain.Constraint, error) {
	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	now := l.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	if err := repository.NewSQLiteConstraintRepo(l.querier(ctx)).Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (l *Local) ListDailyReports(ctx context.Context, q DailyReportQuery) ([]*domain.DailyReport, error) {
	reports := repository.NewSQLiteDailyReportRepo(l.querier(ctx))
	if q.ProjectID == "" {
		var since time.Time
		if q.Since != nil {
			since = *q.Since
		}
		return reports.ListSince(ctx, since)
	}
	list, err := reports.ListByProject(ctx, q.ProjectID)
	if err != nil || q.Since == nil {
		return list, err
	}
	cutoff := q.Since.UTC().Truncate(24 * time.Hour)
	var out []*domain.DailyReport
	for _, r := range list {
		if !r.ReportDate.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *Local) CreateDailyReport(ctx context.Context, r *domain.DailyReport, idempotencyKey string) (*domain.DailyReport, error) {
	var created *domain.DailyReport
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		reports := repository.NewSQLiteDailyReportRepo(tx)
		idem := repository.NewSQLiteIdempotencyRepo(tx)

		if existing, err := lookupKey(ctx, idem, idempotencyKey, OpCreateDailyReport); err != nil || existing != "" {
			if err != nil {
				return err
			}
			created, err = reports.GetByID(ctx, existing)
			return err
		}

		cp := *r
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		if err := cp.Validate(); err != nil {
			return err
		}
		now := l.now()
		cp.CreatedAt, cp.UpdatedAt = now, now
		if err := reports.Create(ctx, &cp); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewValidationError("report_date", "a report for this project and date was already submitted")
			}
			return err
		}
		if err := recordKey(ctx, idem, idempotencyKey, OpCreateDailyReport, cp.ID); err != nil {
			return err
		}
		created = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// QueueStats counts the records awaiting PM action. Both counts are read in
// one transaction so the total is consistent.
func (l *Local) QueueStats(ctx context.Context) (*app.QueueStats, error) {
	var stats app.QueueStats
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		quoteCounts, err := repository.NewSQLiteQuoteRepo(tx).CountByStatus(ctx)
		if err != nil {
			return err
		}
		projectCounts, err := repository.NewSQLiteProjectRepo(tx).CountByStatus(ctx)
		if err != nil {
			return err
		}
		stats.PendingQuotes = quoteCounts[domain.QuotePending]
		stats.InReviewQuotes = quoteCounts[domain.QuoteInReview]
		stats.DraftProjects = projectCounts[domain.ProjectDraft]
		stats.TotalActionNeeded = stats.PendingQuotes + stats.InReviewQuotes + stats.DraftProjects
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("counting queue: %w", err)
	}
	stats.FetchedAt = l.now()
	return &stats, nil
}

// lookupKey returns the resource a replayed key produced, or "" for a new
// key. A key recorded by a different operation is rejected.
func lookupKey(ctx context.Context, idem repository.IdempotencyRepo, key, op string) (string, error) {
	if key == "" {
		return "", nil
	}
	rec, err := idem.Lookup(ctx, key)
	if err != nil || rec == nil {
		return "", err
	}
	if rec.Operation != op {
		return "", domain.NewValidationError("idempotency_key", fmt.Sprintf("was already used for %s", strings.ReplaceAll(rec.Operation, "_", " ")))
	}
	return rec.ResourceID, nil
}

func recordKey(ctx context.Context, idem repository.IdempotencyRepo, key, op, resourceID string) error {
	if key == "" {
		return nil
	}
	return idem.Record(ctx, key, op, resourceID)
}
