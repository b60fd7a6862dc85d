package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

var queueTypeLabel = map[domain.QueueItemType]string{
	domain.QueueItemQuote:       "quote",
	domain.QueueItemDraft:       "draft",
	domain.QueueItemDailyReport: "report",
}

func FormatQueuePage(page *app.QueuePage, now time.Time) string {
	if len(page.Items) == 0 {
		return Dim("Nothing waiting on the office.")
	}
	rows := make([][]string, 0, len(page.Items))
	for _, it := range page.Items {
		rows = append(rows, []string{
			queueTypeLabel[it.ItemType],
			ShortID(it.ID),
			Truncate(it.Title, 36),
			UrgencyBadge(it.Urgency),
			domain.CoalesceStr(it.SubmittedBy, "-"),
			Ago(it.SubmittedAt, now),
		})
	}
	footer := Dim(fmt.Sprintf("%d-%d of %d · fetched %s",
		page.Offset+1, page.Offset+len(page.Items), page.Total, Ago(page.FetchedAt, now)))
	return RenderTable([]string{"TYPE", "ID", "TITLE", "URGENCY", "FROM", "SUBMITTED"}, rows) + footer
}

func FormatQueueStats(s *app.QueueStats) string {
	return fmt.Sprintf("%s  %s pending · %s in review · %s drafts",
		Bold(fmt.Sprintf("%d need action", s.TotalActionNeeded)),
		StyleYellow.Render(fmt.Sprint(s.PendingQuotes)),
		StyleBlue.Render(fmt.Sprint(s.InReviewQuotes)),
		StylePurple.Render(fmt.Sprint(s.DraftProjects)),
	)
}

// FormatQueueView renders both halves. A failed half shows a retry hint in
// place of its data.
func FormatQueueView(v app.QueueView, now time.Time) string {
	var parts []string
	if v.StatsErr != nil {
		parts = append(parts, StyleYellow.Render("Counts unavailable: "+v.StatsErr.Error()+" (run again to retry)"))
	} else if v.Stats != nil {
		parts = append(parts, FormatQueueStats(v.Stats))
	}
	if v.ItemsErr != nil {
		parts = append(parts, StyleYellow.Render("Queue unavailable: "+v.ItemsErr.Error()+" (run again to retry)"))
	} else if v.Items != nil {
		parts = append(parts, FormatQueuePage(v.Items, now))
	}
	return strings.Join(parts, "\n\n")
}
