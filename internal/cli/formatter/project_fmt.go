package formatter

import (
	"time"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func FormatProjectList(projects []*domain.Project, now time.Time) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			ShortID(p.ID),
			domain.CoalesceStr(p.Number, "-"),
			Truncate(p.Name, 32),
			string(p.Status),
			p.ClientName,
			Money(p.ContractValue),
			Ago(p.CreatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "NUMBER", "NAME", "STATUS", "CLIENT", "VALUE", "CREATED"}, rows)
}
