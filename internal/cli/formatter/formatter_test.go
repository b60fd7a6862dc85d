package formatter

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

var now = time.Date(2026, 1, 18, 15, 30, 0, 0, time.UTC)

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{
		{StyleRed.Render("x"), "1"},
		{"longer", "2"},
	})
	lines := splitLines(out)
	assert.Len(t, lines, 4)
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))
}

func TestMoneyAndAgo(t *testing.T) {
	assert.Equal(t, "-", Money(nil))
	assert.Equal(t, "$4,200", Money(domain.Float64Ptr(4200)))
	assert.Equal(t, "$1,234.5", Money(domain.Float64Ptr(1234.5)))
	assert.Equal(t, "3 hours ago", Ago(now.Add(-3*time.Hour), now))
	assert.Equal(t, "-", Ago(time.Time{}, now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
}

func TestFormatQueueView_DegradedHalf(t *testing.T) {
	out := FormatQueueView(app.QueueView{
		Items: &app.QueuePage{
			Items: []app.QueueItem{{
				ItemType:    domain.QueueItemQuote,
				ID:          "q-123456789",
				Title:       "Replace RTU",
				Urgency:     domain.UrgencyEmergency,
				SubmittedBy: "Sam",
				SubmittedAt: now.Add(-time.Hour),
			}},
			Total:     1,
			Limit:     50,
			FetchedAt: now,
		},
		StatsErr: assert.AnError,
	}, now)
	assert.Contains(t, out, "Replace RTU")
	assert.Contains(t, out, "EMERGENCY")
	assert.Contains(t, out, "Counts unavailable")
	assert.Contains(t, out, "1-1 of 1")
}

func TestFormatFeed(t *testing.T) {
	due := now.AddDate(0, 0, 2)
	out := FormatFeed(app.FeedSnapshot{
		Items: []domain.BlockerItem{{
			Type:        domain.BlockerRFI,
			Title:       "2 open RFIs",
			Description: "RFI-001: Beam size?",
			Severity:    domain.SeverityCritical,
			DueDate:     &due,
			Count:       2,
		}},
		RefreshedAt: now,
		Trigger:     app.TriggerManual,
	}, now)
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "2 open RFIs")
	assert.Contains(t, out, "Jan 20, 2026")

	assert.Contains(t, FormatFeed(app.FeedSnapshot{RefreshedAt: now}, now), "No blockers")
}

func TestFormatDeliveryList(t *testing.T) {
	eta := now.Add(5 * time.Hour)
	out := FormatDeliveryList([]app.DeliveryView{{
		Delivery: &domain.Delivery{
			ID:               "d-1",
			SupplierName:     "Steel Co",
			EstimatedArrival: &eta,
			Notify24h:        true,
			NotificationSent: true,
		},
		Status:       domain.DeliveryInTransit,
		ArrivingSoon: true,
	}}, now)
	assert.Contains(t, out, "Steel Co")
	assert.Contains(t, out, "within 24h")
	assert.Contains(t, out, "sent")
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
