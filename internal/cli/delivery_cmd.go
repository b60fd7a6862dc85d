package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func newDeliveryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Track material deliveries and arrival reminders",
	}

	cmd.AddCommand(
		newDeliveryAddCmd(app),
		newDeliveryListCmd(app),
		newDeliveryReleaseCmd(app),
		newDeliveryArriveCmd(app),
		newDeliveryRescheduleCmd(app),
		newDeliveryRemoveCmd(app),
		newDeliveryRemindCmd(app),
	)

	return cmd
}

func newDeliveryAddCmd(a *App) *cobra.Command {
	var project, eta, ordered string
	var d domain.Delivery

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expected delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, project)
			if err != nil {
				return quiet(err)
			}
			d.ProjectID = projectID
			if eta != "" {
				t, err := parseTime(eta)
				if err != nil {
					return err
				}
				d.EstimatedArrival = &t
			}
			if ordered != "" {
				t, err := parseTime(ordered)
				if err != nil {
					return err
				}
				d.OrderDate = &t
			}

			created, err := a.Deliveries.Create(ctx, &d)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded delivery from %s (%s)\n", formatter.Bold(created.SupplierName), formatter.ShortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID or number")
	cmd.Flags().StringVar(&d.SupplierName, "supplier", "", "Supplier name")
	cmd.Flags().StringVar(&d.SupplierContact, "contact", "", "Supplier contact")
	cmd.Flags().StringVar(&d.SupplierPhone, "phone", "", "Supplier phone")
	cmd.Flags().StringVar(&d.PONumber, "po", "", "Purchase order number")
	cmd.Flags().StringSliceVar(&d.Contents, "contents", nil, "Materials on the delivery (repeatable)")
	cmd.Flags().StringVar(&d.Carrier, "carrier", "", "Carrier")
	cmd.Flags().StringVar(&d.TrackingNumber, "tracking", "", "Tracking number")
	cmd.Flags().StringVar(&ordered, "ordered", "", "Order date")
	cmd.Flags().StringVar(&eta, "eta", "", "Estimated arrival (YYYY-MM-DD HH:MM)")
	cmd.Flags().BoolVar(&d.Notify24h, "notify", false, "Remind me 24 hours before arrival")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("supplier")

	return cmd
}

func newDeliveryListCmd(a *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deliveries with their derived status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID := ""
			if project != "" {
				id, err := resolveProjectID(ctx, a, project)
				if err != nil {
					return quiet(err)
				}
				projectID = id
			}
			views, err := a.Deliveries.List(ctx, projectID)
			if err != nil {
				return quiet(err)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No deliveries found.")
				return nil
			}
			now := a.now()
			for _, r := range fireDueReminders(ctx, a, views, now) {
				fmt.Fprintln(out, formatter.FormatReminder(r, now))
			}
			fmt.Fprint(out, formatter.FormatDeliveryList(views, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID or number")
	return cmd
}

func newDeliveryReleaseCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "release DELIVERY",
		Short: "Mark a delivery released by the supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveDeliveryID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			d, err := a.Deliveries.MarkReleased(cmd.Context(), id)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery from %s is in transit\n", formatter.Bold(d.SupplierName))
			return nil
		},
	}
}

func newDeliveryArriveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "arrive DELIVERY",
		Short: "Mark a delivery received on site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveDeliveryID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			d, err := a.Deliveries.MarkDelivered(cmd.Context(), id)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery from %s received\n", formatter.Bold(d.SupplierName))
			return nil
		},
	}
}

func newDeliveryRescheduleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule DELIVERY ETA",
		Short: "Change a delivery's estimated arrival",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eta, err := parseTime(args[1])
			if err != nil {
				return err
			}
			id, err := resolveDeliveryID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			d, err := a.Deliveries.Reschedule(cmd.Context(), id, eta)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery from %s now arrives %s\n", formatter.Bold(d.SupplierName), formatter.Day(d.EstimatedArrival))
			return nil
		},
	}
}

func newDeliveryRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm DELIVERY",
		Short: "Delete a delivery you recorded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveDeliveryID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			if err := a.Deliveries.Delete(cmd.Context(), id); err != nil {
				return quiet(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted delivery", formatter.ShortID(id))
			return nil
		},
	}
}

func newDeliveryRemindCmd(a *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Fire due 24-hour arrival reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID := ""
			if project != "" {
				id, err := resolveProjectID(ctx, a, project)
				if err != nil {
					return quiet(err)
				}
				projectID = id
			}
			now := a.now()
			res, err := a.Reminders.EvaluateReminders(ctx, projectID, now)
			if err != nil {
				return quiet(err)
			}
			out := cmd.OutOrStdout()
			for _, r := range res.Fired {
				fmt.Fprintln(out, formatter.FormatReminder(r, now))
			}
			fmt.Fprintf(out, "%s checked, %s sent\n",
				english.Plural(res.Evaluated, "delivery", "deliveries"),
				english.Plural(len(res.Fired), "reminder", "reminders"))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Only this project (default: all)")
	return cmd
}

// fireDueReminders runs the 24-hour reminder check over deliveries a view
// just loaded. A failed check is logged and never hides the list.
func fireDueReminders(ctx context.Context, a *App, views []app.DeliveryView, now time.Time) []app.Reminder {
	if a.Reminders == nil || len(views) == 0 {
		return nil
	}
	deliveries := make([]*domain.Delivery, 0, len(views))
	for _, v := range views {
		deliveries = append(deliveries, v.Delivery)
	}
	res, err := a.Reminders.EvaluateDeliveries(ctx, deliveries, now)
	if err != nil {
		a.logger().WarnContext(ctx, "reminder_check_failed", "error", err)
	}
	if res == nil {
		return nil
	}
	return res.Fired
}
