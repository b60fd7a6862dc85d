package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func FormatQuoteList(quotes []*domain.QuoteRequest, now time.Time) string {
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			ShortID(q.ID),
			Truncate(q.Title, 36),
			QuoteStatusStyle(q.Status).Render(string(q.Status)),
			UrgencyBadge(q.Urgency),
			Money(q.QuotedAmount),
			Ago(q.CreatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "STATUS", "URGENCY", "AMOUNT", "SUBMITTED"}, rows)
}

func FormatQuoteDetail(q *domain.QuoteRequest, now time.Time) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", Dim(fmt.Sprintf("%-12s", label)), value)
	}
	line("Status", QuoteStatusStyle(q.Status).Render(string(q.Status)))
	line("Urgency", UrgencyBadge(q.Urgency))
	line("Submitted", domain.CoalesceStr(q.SubmittedByName, q.SubmittedByID)+" · "+Ago(q.CreatedAt, now))
	line("Assigned", q.AssignedToID)
	line("Customer", q.CustomerName)
	line("Address", strings.Trim(strings.Join([]string{q.Address, q.City, q.State}, ", "), ", "))
	line("Schedule", q.PreferredSchedule)
	if q.QuotedAmount != nil {
		line("Quoted", Money(q.QuotedAmount))
	}
	line("Notes", q.QuoteNotes)
	line("Project", q.ConvertedProjectID)
	if n := len(q.Photos); n > 0 {
		line("Photos", fmt.Sprintf("%d attached", n))
	}
	b.WriteString("\n" + q.Description)
	if q.ScopeNotes != "" {
		b.WriteString("\n\n" + Dim("Scope: ") + q.ScopeNotes)
	}
	return RenderBox(q.Title, b.String())
}
