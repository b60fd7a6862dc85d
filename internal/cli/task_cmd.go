package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/service"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with assigned tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskAddCmd(app),
		newTaskActionCmd(app, "ack", "Acknowledge a task", service.TaskService.Acknowledge),
		newTaskActionCmd(app, "start", "Start a task", service.TaskService.Start),
		newTaskActionCmd(app, "complete", "Complete a task", service.TaskService.Complete),
		newTaskActionCmd(app, "block", "Mark a task blocked", service.TaskService.Block),
		newTaskActionCmd(app, "unblock", "Resume a blocked task", service.TaskService.Unblock),
	)

	return cmd
}

func newTaskListCmd(a *App) *cobra.Command {
	var project string
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List my tasks, or every task of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var want []domain.TaskStatus
			for _, s := range statuses {
				want = append(want, domain.TaskStatus(s))
			}

			var tasks []*domain.Task
			var err error
			if project != "" {
				id, rerr := resolveProjectID(ctx, a, project)
				if rerr != nil {
					return quiet(rerr)
				}
				tasks, err = a.Tasks.ListByProject(ctx, id, want...)
			} else {
				tasks, err = a.Tasks.ListMine(ctx, want...)
			}
			if err != nil {
				return quiet(err)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID or number")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	var project, title, description, assignee, priority, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Assign a task to a field user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, project)
			if err != nil {
				return quiet(err)
			}
			t := &domain.Task{
				ProjectID:   projectID,
				Title:       title,
				Description: description,
				AssigneeID:  assignee,
				Priority:    domain.TaskPriority(priority),
			}
			if due != "" {
				d, err := parseTime(due)
				if err != nil {
					return err
				}
				t.DueDate = &d
			}

			created, err := a.Tasks.Create(ctx, t)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned task %s to %s (%s)\n", formatter.Bold(created.Title), created.AssigneeID, formatter.ShortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID or number")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Details")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user ID")
	cmd.Flags().StringVar(&priority, "priority", "", "urgent, high, medium or low")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("assignee")

	return cmd
}

func newTaskActionCmd(a *App, use, short string, action func(service.TaskService, context.Context, string) (*domain.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TASK",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTaskID(cmd.Context(), a, args[0])
			if err != nil {
				return quiet(err)
			}
			t, err := action(a.Tasks, cmd.Context(), id)
			if err != nil {
				return quiet(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", formatter.Bold(t.Title), t.Status)
			return nil
		},
	}
}
