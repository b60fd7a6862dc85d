package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// UrgencyBadge renders the queue urgency badge. Draft items have none.
func UrgencyBadge(u domain.Urgency) string {
	switch u {
	case domain.UrgencyEmergency:
		return StyleRed.Render("● EMERGENCY")
	case domain.UrgencyRush:
		return StyleYellow.Render("● RUSH")
	case domain.UrgencyStandard:
		return StyleDim.Render("● standard")
	}
	return ""
}

// SeverityIndicator renders a blocker severity such as "▲ CRITICAL".
func SeverityIndicator(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return StyleRed.Render("▲ CRITICAL")
	case domain.SeverityWarning:
		return StyleYellow.Render("▲ WARNING")
	}
	return StyleBlue.Render("▲ INFO")
}

func DeliveryStatusStyle(s domain.DeliveryStatus) lipgloss.Style {
	switch s {
	case domain.DeliveryLate:
		return StyleRed
	case domain.DeliveryInTransit:
		return StyleBlue
	case domain.DeliveryDelivered:
		return StyleGreen
	}
	return StyleDim
}

func QuoteStatusStyle(s domain.QuoteStatus) lipgloss.Style {
	switch s {
	case domain.QuotePending:
		return StyleYellow
	case domain.QuoteInReview:
		return StyleBlue
	case domain.QuoteQuoted:
		return StylePurple
	case domain.QuoteConverted:
		return StyleGreen
	}
	return StyleDim
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
