package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize/english"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// ErrSuperseded is returned by a refresh whose result was discarded because
// a newer refresh or project selection started after it.
var ErrSuperseded = fmt.Errorf("blocker refresh superseded: %w", backend.ErrCanceled)

const blockerPreviewSize = 3

// BlockerSources is what the blocker feed queries for one project.
type BlockerSources interface {
	ListRFIs(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error)
	ListConstraints(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error)
	ListTasks(ctx context.Context, q backend.TaskQuery) ([]*domain.Task, error)
}

// BlockerFeed keeps the cockpit's blocker list for the selected project.
// Every refresh takes a new generation and cancels the one in flight; only
// the newest generation may replace the feed, and it replaces it whole.
type BlockerFeed struct {
	src    BlockerSources
	logger *slog.Logger
	clock  func() time.Time

	mu         sync.Mutex
	projectID  string
	generation uint64
	cancel     context.CancelFunc
	snapshot   app.FeedSnapshot
}

func NewBlockerFeed(src BlockerSources, logger *slog.Logger) *BlockerFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlockerFeed{src: src, logger: logger, clock: time.Now}
}

// SelectProject switches the feed to projectID, clears the previous
// project's items and loads the new ones.
func (f *BlockerFeed) SelectProject(ctx context.Context, projectID string) (app.FeedSnapshot, error) {
	if projectID == "" {
		return app.FeedSnapshot{}, domain.NewValidationError("project_id", "is required")
	}
	f.mu.Lock()
	if f.projectID != projectID {
		if f.cancel != nil {
			f.cancel()
			f.cancel = nil
		}
		f.generation++
		f.projectID = projectID
		f.snapshot = app.FeedSnapshot{ProjectID: projectID, Generation: f.generation}
	}
	f.mu.Unlock()
	return f.Refresh(ctx, app.TriggerSelect)
}

// Refresh reloads the feed for the selected project. A superseded call
// returns the current snapshot together with ErrSuperseded.
func (f *BlockerFeed) Refresh(ctx context.Context, trigger app.FeedTrigger) (app.FeedSnapshot, error) {
	f.mu.Lock()
	if f.projectID == "" {
		f.mu.Unlock()
		return app.FeedSnapshot{}, &app.RequestError{Code: app.ErrCodeNoProject, Message: "select a project first"}
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.generation++
	gen := f.generation
	projectID := f.projectID
	rctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()
	defer cancel()

	items := f.collect(rctx, projectID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || projectID != f.projectID {
		return f.snapshot, ErrSuperseded
	}
	f.cancel = nil
	if err := ctx.Err(); err != nil {
		return f.snapshot, fmt.Errorf("blocker refresh: %w: %w", backend.ErrCanceled, err)
	}
	f.snapshot = app.FeedSnapshot{
		ProjectID:   projectID,
		Generation:  gen,
		Items:       items,
		RefreshedAt: f.clock(),
		Trigger:     trigger,
	}
	return f.snapshot, nil
}

// Snapshot returns the feed as last applied.
func (f *BlockerFeed) Snapshot() app.FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot
	snap.Items = append([]domain.BlockerItem(nil), f.snapshot.Items...)
	return snap
}

// Poll refreshes every interval until ctx ends. Superseded and failed
// polls are skipped.
func (f *BlockerFeed) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return domain.NewValidationError("interval", "must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if _, err := f.Refresh(ctx, app.TriggerPoll); err != nil && !errors.Is(err, ErrSuperseded) {
			var reqErr *app.RequestError
			if !errors.As(err, &reqErr) && ctx.Err() == nil {
				f.logger.DebugContext(ctx, "blocker_poll_failed", "error", err)
			}
		}
	}
}

// collect queries every source at once. A failing source adds nothing and
// never fails the refresh.
func (f *BlockerFeed) collect(ctx context.Context, projectID string) []domain.BlockerItem {
	var rfiItem, constraintItem, taskItem *domain.BlockerItem
	var g errgroup.Group

	g.Go(func() error {
		rfis, err := f.src.ListRFIs(ctx, projectID, domain.OpenRFIStatuses...)
		if err != nil {
			f.sourceFailed(ctx, domain.BlockerRFI, projectID, err)
			return nil
		}
		rfiItem = rfiBlocker(rfis)
		return nil
	})
	g.Go(func() error {
		unresolved := false
		constraints, err := f.src.ListConstraints(ctx, projectID, &unresolved)
		if err != nil {
			f.sourceFailed(ctx, domain.BlockerConstraint, projectID, err)
			return nil
		}
		constraintItem = constraintBlocker(constraints)
		return nil
	})
	g.Go(func() error {
		tasks, err := f.src.ListTasks(ctx, backend.TaskQuery{
			ProjectID: projectID,
			Statuses:  []domain.TaskStatus{domain.TaskPending},
		})
		if err != nil {
			f.sourceFailed(ctx, domain.BlockerTask, projectID, err)
			return nil
		}
		taskItem = taskBlocker(tasks)
		return nil
	})
	_ = g.Wait()

	var items []domain.BlockerItem
	for _, it := range []*domain.BlockerItem{rfiItem, constraintItem, taskItem} {
		if it != nil {
			items = append(items, *it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return severityRank(items[i].Severity) < severityRank(items[j].Severity)
	})
	return items
}

func (f *BlockerFeed) sourceFailed(ctx context.Context, source domain.BlockerType, projectID string, err error) {
	f.logger.DebugContext(ctx, "blocker_source_failed", "source", string(source), "project_id", projectID, "error", err)
}

func rfiBlocker(rfis []*domain.RFI) *domain.BlockerItem {
	if len(rfis) == 0 {
		return nil
	}
	preview := make([]string, 0, blockerPreviewSize)
	dues := make([]*time.Time, 0, len(rfis))
	for _, r := range rfis {
		if len(preview) < blockerPreviewSize {
			preview = append(preview, strings.TrimSpace(domain.CoalesceStr(r.Number, "RFI")+": "+r.Question))
		}
		dues = append(dues, r.DueDate)
	}
	return &domain.BlockerItem{
		Type:        domain.BlockerRFI,
		Title:       english.Plural(len(rfis), "open RFI", "open RFIs"),
		Description: previewText(preview, len(rfis)),
		Severity:    domain.SeverityCritical,
		DueDate:     domain.EarliestTime(dues...),
		Count:       len(rfis),
	}
}

func constraintBlocker(constraints []*domain.Constraint) *domain.BlockerItem {
	if len(constraints) == 0 {
		return nil
	}
	preview := make([]string, 0, blockerPreviewSize)
	dues := make([]*time.Time, 0, len(constraints))
	for _, c := range constraints {
		if len(preview) < blockerPreviewSize {
			preview = append(preview, c.Description)
		}
		dues = append(dues, c.DueDate)
	}
	return &domain.BlockerItem{
		Type:        domain.BlockerConstraint,
		Title:       english.Plural(len(constraints), "unresolved constraint", "unresolved constraints"),
		Description: previewText(preview, len(constraints)),
		Severity:    domain.SeverityWarning,
		DueDate:     domain.EarliestTime(dues...),
		Count:       len(constraints),
	}
}

func taskBlocker(tasks []*domain.Task) *domain.BlockerItem {
	if len(tasks) == 0 {
		return nil
	}
	preview := make([]string, 0, blockerPreviewSize)
	dues := make([]*time.Time, 0, len(tasks))
	for _, t := range tasks {
		if len(preview) < blockerPreviewSize {
			preview = append(preview, t.Title)
		}
		dues = append(dues, t.DueDate)
	}
	return &domain.BlockerItem{
		Type:        domain.BlockerTask,
		Title:       english.Plural(len(tasks), "unacknowledged task", "unacknowledged tasks"),
		Description: previewText(preview, len(tasks)),
		Severity:    domain.SeverityWarning,
		DueDate:     domain.EarliestTime(dues...),
		Count:       len(tasks),
	}
}

func previewText(preview []string, total int) string {
	text := strings.Join(preview, "; ")
	if rest := total - len(preview); rest > 0 {
		text += fmt.Sprintf("; +%d more", rest)
	}
	return text
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityCritical:
		return 0
	case domain.SeverityWarning:
		return 1
	}
	return 2
}
