package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
)

func FormatFeed(snap app.FeedSnapshot, now time.Time) string {
	if len(snap.Items) == 0 {
		if snap.RefreshedAt.IsZero() {
			return Dim("Loading blockers…")
		}
		return StyleGreen.Render("No blockers. ") + Dim("Updated "+Ago(snap.RefreshedAt, now))
	}
	var b strings.Builder
	for _, it := range snap.Items {
		fmt.Fprintf(&b, "%s  %s", SeverityIndicator(it.Severity), Bold(it.Title))
		if it.DueDate != nil {
			fmt.Fprintf(&b, "  %s", Dim("due "+Day(it.DueDate)))
		}
		b.WriteString("\n")
		if it.Description != "" {
			fmt.Fprintf(&b, "    %s\n", Dim(it.Description))
		}
	}
	fmt.Fprintf(&b, "%s", Dim(fmt.Sprintf("Updated %s · %s", Ago(snap.RefreshedAt, now), snap.Trigger)))
	return b.String()
}
