package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// fieldHuhTheme styles intake forms with the Gruvbox palette.
func fieldHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// quoteIntakeForm collects a quote request on site. Values already set from
// flags show up prefilled.
func quoteIntakeForm(req *app.SubmitQuoteRequest, urgency *string) *huh.Form {
	if *urgency == "" {
		*urgency = string(domain.UrgencyStandard)
	}
	return huh.NewForm(
		huh.NewGroup(
			textInput("Title", "Replace rooftop unit", true, &req.Title),
			huh.NewText().
				Title("What does the customer need?").
				CharLimit(2000).
				Value(&req.Description).
				Validate(requiredText("Description")),
			huh.NewSelect[string]().
				Title("Urgency").
				Options(
					huh.NewOption("Standard", string(domain.UrgencyStandard)),
					huh.NewOption("Rush", string(domain.UrgencyRush)),
					huh.NewOption("Emergency", string(domain.UrgencyEmergency)),
				).
				Value(urgency),
		).Title("Request"),
		huh.NewGroup(
			textInput("Customer", "", false, &req.CustomerName),
			textInput("Phone", "", false, &req.CustomerPhone),
			textInput("Email", "", false, &req.CustomerEmail),
			textInput("Street address", "", false, &req.Address),
			textInput("City", "", false, &req.City),
			textInput("State", "", false, &req.State),
		).Title("Site and customer"),
		huh.NewGroup(
			huh.NewText().Title("Scope notes").Value(&req.ScopeNotes),
			textInput("Preferred schedule", "Mornings next week", false, &req.PreferredSchedule),
		).Title("Details"),
	).WithTheme(fieldHuhTheme()).WithShowHelp(false)
}

// draftProjectForm collects a Quick Setup draft.
func draftProjectForm(req *app.CreateDraftRequest, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			textInput("Project name", "Elm St addition", true, &req.Name),
			huh.NewText().Title("Description").Value(&req.Description),
			textInput("Client", "", false, &req.ClientName),
			huh.NewInput().
				Title("Contract value (blank if unknown)").
				Placeholder("42000").
				Value(value).
				Validate(validateOptionalAmount),
		).Title("Project"),
		huh.NewGroup(
			textInput("Street address", "", false, &req.Address),
			textInput("City", "", false, &req.City),
			textInput("State", "", false, &req.State),
		).Title("Site"),
	).WithTheme(fieldHuhTheme()).WithShowHelp(false)
}

func textInput(title, placeholder string, required bool, value *string) *huh.Input {
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value)
	if required {
		input = input.Validate(requiredText(title))
	}
	return input
}

func requiredText(title string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(title))
		}
		return nil
	}
}

// validateOptionalAmount accepts blank or a finite dollar amount above zero.
func validateOptionalAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errors.New("enter an amount greater than zero")
	}
	return nil
}

// promptIfMissing runs form when a required field is blank and the user is
// at a terminal. It reports false when the user backed out.
func (a *App) promptIfMissing(out io.Writer, form func() *huh.Form, required ...string) (bool, error) {
	missing := false
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			missing = true
			break
		}
	}
	if !missing || !a.interactive() {
		return true, nil
	}
	if err := a.runForm(form()); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "Cancelled.")
			return false, nil
		}
		return false, err
	}
	return true, nil
}
