package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// QueueSources is the slice of the office API the PM queue reads from.
type QueueSources interface {
	backend.Quotes
	backend.Projects
	backend.DailyReports
	backend.Queue
}

type queueService struct {
	src      QueueSources
	clock    func() time.Time
	observer UseCaseObserver
}

func NewQueueService(src QueueSources, observers ...UseCaseObserver) QueueService {
	return &queueService{
		src:      src,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *queueService) ListQueue(ctx context.Context, req app.QueueRequest) (page *app.QueuePage, err error) {
	req = req.Normalized()
	fields := map[string]any{"filter": string(req.Filter), "offset": req.Offset, "limit": req.Limit}
	defer observe(ctx, s.observer, "queue.list", s.clock(), fields, &err)

	if _, err := app.ParseQueueFilter(string(req.Filter)); err != nil {
		return nil, err
	}

	var quotes, drafts, reports []app.QueueItem
	g, gctx := errgroup.WithContext(ctx)
	if req.Filter.Includes(domain.QueueItemQuote) {
		g.Go(func() error {
			list, err := s.src.ListQuotes(gctx, backend.QuoteQuery{
				Statuses: []domain.QuoteStatus{domain.QuotePending, domain.QuoteInReview},
			})
			if err != nil {
				return fmt.Errorf("list quotes: %w", err)
			}
			quotes = quoteItems(list)
			return nil
		})
	}
	if req.Filter.Includes(domain.QueueItemDraft) {
		g.Go(func() error {
			list, err := s.src.ListProjects(gctx, domain.ProjectDraft)
			if err != nil {
				return fmt.Errorf("list draft projects: %w", err)
			}
			drafts = draftItems(list)
			return nil
		})
	}
	if req.IncludeDailyReports && req.Filter == app.QueueAll {
		since := s.clock().AddDate(0, 0, -req.DailyReportDays)
		g.Go(func() error {
			list, err := s.src.ListDailyReports(gctx, backend.DailyReportQuery{Since: &since})
			if err != nil {
				return fmt.Errorf("list daily reports: %w", err)
			}
			reports = dailyReportItems(list)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := mergeQueueItems(quotes, drafts, reports)
	fields["total"] = len(items)
	return &app.QueuePage{
		Items:     pageItems(items, req.Offset, req.Limit),
		Total:     len(items),
		Offset:    req.Offset,
		Limit:     req.Limit,
		FetchedAt: s.clock(),
	}, nil
}

func (s *queueService) Stats(ctx context.Context) (*app.QueueStats, error) {
	stats, err := s.src.QueueStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.FetchedAt.IsZero() {
		stats.FetchedAt = s.clock()
	}
	return stats, nil
}

func (s *queueService) Load(ctx context.Context, req app.QueueRequest) app.QueueView {
	var view app.QueueView
	var g errgroup.Group
	g.Go(func() error {
		view.Items, view.ItemsErr = s.ListQueue(ctx, req)
		return nil
	})
	g.Go(func() error {
		view.Stats, view.StatsErr = s.Stats(ctx)
		return nil
	})
	_ = g.Wait()
	return view
}

func (s *queueService) LoadDashboard(ctx context.Context, req app.QueueRequest) app.QueueView {
	req.IncludeDailyReports = true
	return s.Load(ctx, req)
}

func quoteItems(quotes []*domain.QuoteRequest) []app.QueueItem {
	out := make([]app.QueueItem, 0, len(quotes))
	for _, q := range quotes {
		if !q.AwaitingDecision() {
			continue
		}
		out = append(out, app.QueueItem{
			ItemType:    domain.QueueItemQuote,
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			SubmittedBy: domain.CoalesceStr(q.SubmittedByName, q.SubmittedByID),
			SubmittedAt: q.CreatedAt,
			Urgency:     q.Urgency,
			Status:      string(q.Status),
			Address:     q.Address,
		})
	}
	return out
}

func draftItems(projects []*domain.Project) []app.QueueItem {
	out := make([]app.QueueItem, 0, len(projects))
	for _, p := range projects {
		if !p.IsDraft() {
			continue
		}
		out = append(out, app.QueueItem{
			ItemType:    domain.QueueItemDraft,
			ID:          p.ID,
			Title:       p.Name,
			Description: p.Description,
			SubmittedBy: p.CreatedByName,
			SubmittedAt: p.CreatedAt,
			Status:      string(p.Status),
			Address:     p.Address,
		})
	}
	return out
}

func dailyReportItems(reports []*domain.DailyReport) []app.QueueItem {
	out := make([]app.QueueItem, 0, len(reports))
	for _, r := range reports {
		out = append(out, app.QueueItem{
			ItemType:    domain.QueueItemDailyReport,
			ID:          r.ID,
			Title:       "Daily report " + r.ReportDate.Format("2006-01-02"),
			Description: r.WorkCompleted,
			SubmittedBy: domain.CoalesceStr(r.SubmittedByName, r.SubmittedByID),
			SubmittedAt: r.CreatedAt,
			Status:      "submitted",
		})
	}
	return out
}

// mergeQueueItems orders newest first. Ties keep source order: quotes, then
// drafts, then reports.
func mergeQueueItems(groups ...[]app.QueueItem) []app.QueueItem {
	var all []app.QueueItem
	for _, g := range groups {
		all = append(all, g...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SubmittedAt.After(all[j].SubmittedAt)
	})
	return all
}

func pageItems(items []app.QueueItem, offset, limit int) []app.QueueItem {
	if offset >= len(items) {
		return []app.QueueItem{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
