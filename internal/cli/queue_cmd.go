package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
)

func newQueueCmd(a *App) *cobra.Command {
	var filter string
	var offset, limit, days int
	var dashboard bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show what the office needs to act on",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.ParseQueueFilter(filter)
			if err != nil {
				return err
			}
			req := app.QueueRequest{Filter: f, Offset: offset, Limit: limit, DailyReportDays: days}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Loading queue…")
			var view app.QueueView
			if dashboard {
				view = a.Queue.LoadDashboard(cmd.Context(), req)
			} else {
				view = a.Queue.Load(cmd.Context(), req)
			}
			stop()

			if view.ItemsErr != nil && view.StatsErr != nil {
				return quiet(view.ItemsErr)
			}
			if view.Degraded() {
				a.logger().WarnContext(cmd.Context(), "queue_degraded",
					"items_error", errString(view.ItemsErr), "stats_error", errString(view.StatsErr))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQueueView(view, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", string(app.QueueAll), "all, quote_request or draft_project")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many items")
	cmd.Flags().IntVar(&limit, "limit", app.DefaultQueueLimit, "Maximum items to show")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "Include recent daily reports")
	cmd.Flags().IntVar(&days, "days", app.DefaultDailyReportDays, "Daily report window in days (with --dashboard)")

	cmd.AddCommand(newQueueStatsCmd(a))
	return cmd
}

func newQueueStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count items awaiting office action",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.Queue.Stats(cmd.Context())
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQueueStats(stats))
			return nil
		},
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
