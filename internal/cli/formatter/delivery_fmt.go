package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
)

func FormatDeliveryList(views []app.DeliveryView, now time.Time) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		d := v.Delivery
		eta := Day(d.EstimatedArrival)
		if v.ArrivingSoon {
			eta = StyleYellow.Render(eta + " (within 24h)")
		}
		reminder := ""
		switch {
		case d.NotificationSent:
			reminder = Dim("sent")
		case d.Notify24h:
			reminder = "on"
		}
		rows = append(rows, []string{
			ShortID(d.ID),
			Truncate(d.SupplierName, 24),
			d.PONumber,
			DeliveryStatusStyle(v.Status).Render(string(v.Status)),
			eta,
			Truncate(strings.Join(d.Contents, ", "), 30),
			reminder,
		})
	}
	return RenderTable([]string{"ID", "SUPPLIER", "PO", "STATUS", "ETA", "CONTENTS", "REMINDER"}, rows)
}

func FormatReminder(r app.Reminder, now time.Time) string {
	text := Bold(r.Supplier) + " arrives " + Ago(r.ETA, now)
	if r.PONumber != "" {
		text += Dim(" · PO " + r.PONumber)
	}
	return StyleYellow.Render("⏰ ") + text
}
