package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/service"
)

func newFeedCmd(a *App) *cobra.Command {
	var watch bool
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "feed PROJECT",
		Short: "Show open blockers for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			projectID, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return quiet(err)
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Loading blockers…")
			snap, err := a.Feed.SelectProject(ctx, projectID)
			stop()
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintln(out, formatter.FormatFeed(snap, a.now()))
			if !watch {
				return nil
			}
			if every <= 0 {
				every = a.Config.PollInterval()
			}
			return quiet(watchFeed(ctx, a, out, snap.Generation, every))
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling until interrupted")
	cmd.Flags().DurationVar(&every, "every", 0, "Poll interval (default from config)")
	return cmd
}

// watchFeed polls the feed and prints each newly applied snapshot.
func watchFeed(parent context.Context, a *App, w io.Writer, lastGen uint64, every time.Duration) error {
	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error {
		return a.Feed.Poll(ctx, every)
	})
	g.Go(func() error {
		ticker := time.NewTicker(max(every/2, 10*time.Millisecond))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			snap := a.Feed.Snapshot()
			if snap.Generation == lastGen || snap.RefreshedAt.IsZero() {
				continue
			}
			lastGen = snap.Generation
			fmt.Fprintln(w, formatter.FormatFeed(snap, a.now()))
		}
	})
	err := g.Wait()
	if parent.Err() != nil || errors.Is(err, service.ErrSuperseded) {
		return nil
	}
	return err
}

// feedTriggerLabel is shown in the cockpit footer.
func feedTriggerLabel(t app.FeedTrigger) string {
	switch t {
	case app.TriggerSelect:
		return "project selected"
	case app.TriggerPoll:
		return "auto-refresh"
	}
	return "refreshed"
}
