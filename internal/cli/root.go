package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/config"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Quotes     service.QuoteService
	Conversion service.ConversionService
	Queue      service.QueueService
	Projects   service.ProjectService
	Tasks      service.TaskService
	Deliveries service.DeliveryService
	Reminders  service.ReminderService
	Feed       *service.BlockerFeed

	// Local is the embedded backend. It is nil when talking to a remote
	// office API, and serve refuses to start without it.
	Local *backend.Local

	Config config.Config
	Actor  domain.Actor
	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// RunForm runs an intake form. Nil means form.Run.
	RunForm func(form *huh.Form) error
	// Now is the clock used for relative times in output.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runForm(form *huh.Form) error {
	if a.RunForm != nil {
		return a.RunForm(form)
	}
	return form.Run()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRootCmd creates the top-level "fieldbridge" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldbridge",
		Short:         "Field-to-office triage: quotes, PM queue, blockers and deliveries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newQuoteCmd(app),
		newQueueCmd(app),
		newProjectCmd(app),
		newTaskCmd(app),
		newDeliveryCmd(app),
		newFeedCmd(app),
		newCockpitCmd(app),
		newServeCmd(app),
	)

	return root
}

// quiet drops errors that only mean the user walked away from the request.
func quiet(err error) error {
	if err != nil && backend.IsCancellation(err) {
		return nil
	}
	return err
}

// outcomeHint tells the user how to safely repeat a write whose result is
// unknown.
func outcomeHint(w io.Writer, err error, key string) {
	if errors.Is(err, backend.ErrOutcomeUnknown) {
		fmt.Fprintf(w, "The office may or may not have received this. Re-run with --key %s to retry without creating a duplicate.\n", key)
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseTime accepts RFC 3339, "YYYY-MM-DD HH:MM" or a bare date, read in
// local time.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", s)
}

// resolveID matches input against ids exactly, then as a unique prefix, so
// the short IDs shown in tables can be typed back.
func resolveID(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

// fullIDLen is the length of a canonical UUID; longer inputs skip prefix
// resolution.
const fullIDLen = 36

func resolveQuoteID(ctx context.Context, app *App, input string) (string, error) {
	if len(input) >= fullIDLen {
		return input, nil
	}
	quotes, err := app.Quotes.List(ctx, listAllQuotes())
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	return resolveID("quote", input, ids)
}

func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if len(input) >= fullIDLen {
		return input, nil
	}
	projects, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Number, input) {
			return p.ID, nil
		}
		ids = append(ids, p.ID)
	}
	return resolveID("project", input, ids)
}

func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	if len(input) >= fullIDLen {
		return input, nil
	}
	tasks, err := app.Tasks.ListMine(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return resolveID("task", input, ids)
}

func resolveDeliveryID(ctx context.Context, app *App, input string) (string, error) {
	if len(input) >= fullIDLen {
		return input, nil
	}
	views, err := app.Deliveries.List(ctx, "")
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.Delivery.ID)
	}
	return resolveID("delivery", input, ids)
}
