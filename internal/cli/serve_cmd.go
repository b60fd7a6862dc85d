package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/fieldbridge/internal/httpapi"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(a *App) *cobra.Command {
	var addr string
	var noReminders bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the office API from the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.Local == nil {
				return errors.New("serve needs the local database; unset base_url to run the office API here")
			}
			if addr == "" {
				addr = a.Config.ListenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := a.logger()
			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewServer(a.Local, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.InfoContext(ctx, "api_listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listening on %s: %w", addr, err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if !noReminders {
				g.Go(func() error {
					err := a.Reminders.Run(ctx, a.Config.ReminderInterval())
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Office API on http://%s (Ctrl-C to stop)\n", addr)
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&noReminders, "no-reminders", false, "Do not run the delivery reminder loop")
	return cmd
}
