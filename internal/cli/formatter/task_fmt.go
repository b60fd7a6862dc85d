package formatter

import (
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func FormatTaskList(tasks []*domain.Task, now time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := Day(t.DueDate)
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != domain.TaskCompleted {
			due = StyleRed.Render(due)
		}
		rows = append(rows, []string{
			ShortID(t.ID),
			Truncate(t.Title, 40),
			string(t.Priority),
			string(t.Status),
			due,
		})
	}
	return RenderTable([]string{"ID", "TITLE", "PRIORITY", "STATUS", "DUE"}, rows)
}
