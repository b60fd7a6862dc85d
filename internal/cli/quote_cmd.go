package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func listAllQuotes() app.ListQuotesRequest {
	return app.ListQuotesRequest{Limit: app.MaxMyQuotesLimit}
}

func newQuoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Submit and decide quote requests",
	}

	cmd.AddCommand(
		newQuoteSubmitCmd(app),
		newQuoteListCmd(app),
		newQuoteShowCmd(app),
		newQuoteAssignCmd(app),
		newQuoteDecideCmd(app),
		newQuoteConvertCmd(app),
	)

	return cmd
}

func newQuoteSubmitCmd(a *App) *cobra.Command {
	var req app.SubmitQuoteRequest
	var urgency string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a quote request from the field",
		Long:  "Send a quote request from the field. At a terminal, a form asks for anything the flags left out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok, err := a.promptIfMissing(out, func() *huh.Form {
				return quoteIntakeForm(&req, &urgency)
			}, req.Title, req.Description)
			if !ok {
				return err
			}
			req.Urgency = domain.Urgency(urgency)
			if req.IdempotencyKey == "" {
				req.IdempotencyKey = uuid.New().String()
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Sending to the office…")
			q, err := a.Quotes.Submit(cmd.Context(), req)
			stop()
			if err != nil {
				outcomeHint(out, err, req.IdempotencyKey)
				return quiet(err)
			}

			fmt.Fprintf(out, "Submitted quote request %s (%s)\n", formatter.Bold(q.Title), formatter.ShortID(q.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Short title")
	cmd.Flags().StringVar(&req.Description, "description", "", "What the customer needs")
	cmd.Flags().StringVar(&urgency, "urgency", string(domain.UrgencyStandard), "standard, rush or emergency")
	cmd.Flags().StringVar(&req.Address, "address", "", "Site street address")
	cmd.Flags().StringVar(&req.City, "city", "", "Site city")
	cmd.Flags().StringVar(&req.State, "state", "", "Site state")
	cmd.Flags().StringVar(&req.CustomerName, "customer", "", "Customer name")
	cmd.Flags().StringVar(&req.CustomerPhone, "phone", "", "Customer phone")
	cmd.Flags().StringVar(&req.CustomerEmail, "email", "", "Customer email")
	cmd.Flags().StringSliceVar(&req.Photos, "photo", nil, "Photo URL (repeatable)")
	cmd.Flags().StringVar(&req.ScopeNotes, "scope", "", "Scope notes")
	cmd.Flags().StringVar(&req.PreferredSchedule, "schedule", "", "Preferred schedule")
	cmd.Flags().StringVar(&req.IdempotencyKey, "key", "", "Idempotency key from an earlier attempt")

	return cmd
}

func newQuoteListCmd(a *App) *cobra.Command {
	var statuses, urgencies []string
	var mine, assigned bool
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quote requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.ListQuotesRequest{
				Mine:         mine,
				AssignedToMe: assigned,
				Offset:       offset,
				Limit:        limit,
			}
			for _, s := range statuses {
				req.Statuses = append(req.Statuses, domain.QuoteStatus(s))
			}
			for _, u := range urgencies {
				req.Urgencies = append(req.Urgencies, domain.Urgency(u))
			}

			quotes, err := a.Quotes.List(cmd.Context(), req)
			if err != nil {
				return quiet(err)
			}
			if len(quotes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No quote requests found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatQuoteList(quotes, a.now()))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().StringSliceVar(&urgencies, "urgency", nil, "Filter by urgency (repeatable)")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only quotes I submitted")
	cmd.Flags().BoolVar(&assigned, "assigned", false, "Only quotes assigned to me")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many quotes")
	cmd.Flags().IntVar(&limit, "limit", app.DefaultMyQuotesLimit, "Maximum quotes to show")

	return cmd
}

func newQuoteShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show QUOTE",
		Short: "Show one quote request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveQuoteID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			q, err := a.Quotes.Get(cmd.Context(), id)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatQuoteDetail(q, a.now()))
			return nil
		},
	}
}

func newQuoteAssignCmd(a *App) *cobra.Command {
	var assignee string

	cmd := &cobra.Command{
		Use:   "assign QUOTE",
		Short: "Take a pending quote into review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveQuoteID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			q, err := a.Quotes.Assign(cmd.Context(), id, assignee)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quote %s is %s, assigned to %s\n", formatter.ShortID(q.ID), q.Status, q.AssignedToID)
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "to", "", "Assignee user ID (default: me)")
	return cmd
}

func newQuoteDecideCmd(a *App) *cobra.Command {
	var outcome, amount, notes string

	cmd := &cobra.Command{
		Use:   "decide QUOTE",
		Short: "Quote or decline a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveQuoteID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			req := app.DecideQuoteRequest{QuoteID: id, Outcome: domain.QuoteStatus(outcome), Notes: notes}
			if amount != "" {
				v, err := strconv.ParseFloat(amount, 64)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				req.Amount = &v
			}

			q, err := a.Quotes.Decide(cmd.Context(), req)
			if err != nil {
				return quiet(err)
			}
			msg := fmt.Sprintf("Quote %s is now %s", formatter.ShortID(q.ID), q.Status)
			if q.QuotedAmount != nil {
				msg += " at " + formatter.Money(q.QuotedAmount)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "quoted or declined")
	cmd.Flags().StringVar(&amount, "amount", "", "Quoted amount in dollars")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the field")
	_ = cmd.MarkFlagRequired("outcome")

	return cmd
}

func newQuoteConvertCmd(a *App) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "convert QUOTE",
		Short: "Turn a quoted request into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := resolveQuoteID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			if key == "" {
				key = uuid.New().String()
			}
			res, err := a.Conversion.ConvertWithKey(cmd.Context(), id, key)
			if err != nil {
				outcomeHint(out, err, key)
				return quiet(err)
			}
			fmt.Fprintf(out, "Created project %s (%s)\n", formatter.Bold(res.ProjectNumber), formatter.ShortID(res.ProjectID))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Idempotency key from an earlier attempt")
	return cmd
}
