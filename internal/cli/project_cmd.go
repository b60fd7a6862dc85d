package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "List, draft and publish projects",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectDraftCmd(app),
		newProjectPublishCmd(app),
	)

	return cmd
}

func newProjectListCmd(a *App) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			var want []domain.ProjectStatus
			for _, s := range statuses {
				want = append(want, domain.ProjectStatus(s))
			}
			projects, err := a.Projects.List(cmd.Context(), want...)
			if err != nil {
				return quiet(err)
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects, a.now()))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newProjectDraftCmd(a *App) *cobra.Command {
	var req app.CreateDraftRequest
	var value string

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Quick-setup a draft project for office review",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok, err := a.promptIfMissing(out, func() *huh.Form {
				return draftProjectForm(&req, &value)
			}, req.Name)
			if !ok {
				return err
			}
			if value = strings.TrimSpace(value); value != "" {
				if err := validateOptionalAmount(value); err != nil {
					return domain.NewValidationError("contract_value", err.Error())
				}
				v, _ := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
				req.ContractValue = &v
			}
			if req.IdempotencyKey == "" {
				req.IdempotencyKey = uuid.New().String()
			}

			p, err := a.Projects.CreateDraft(cmd.Context(), req)
			if err != nil {
				outcomeHint(out, err, req.IdempotencyKey)
				return quiet(err)
			}
			fmt.Fprintf(out, "Created draft project %s (%s)\n", formatter.Bold(p.Name), formatter.ShortID(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Address, "address", "", "Site street address")
	cmd.Flags().StringVar(&req.City, "city", "", "Site city")
	cmd.Flags().StringVar(&req.State, "state", "", "Site state")
	cmd.Flags().StringVar(&req.ClientName, "client", "", "Client name")
	cmd.Flags().StringVar(&value, "value", "", "Contract value in dollars")
	cmd.Flags().StringVar(&req.IdempotencyKey, "key", "", "Idempotency key from an earlier attempt")

	return cmd
}

func newProjectPublishCmd(a *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "publish PROJECT",
		Short: "Move a draft project out of the office queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveProjectID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			p, err := a.Projects.Publish(cmd.Context(), id, domain.ProjectStatus(to))
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s is now %s\n", formatter.Bold(p.Name), p.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", string(domain.ProjectPlanning), "planning or active")
	return cmd
}
