package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/cli/formatter"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/service"
)

// ── messages ─────────────────────────────────────────────────────────────────

type projectsLoadedMsg struct {
	projects []*domain.Project
	err      error
}

// feedLoadedMsg carries one finished refresh. Superseded refreshes arrive
// with service.ErrSuperseded and are dropped.
type feedLoadedMsg struct {
	snap app.FeedSnapshot
	err  error
}

// deliveriesLoadedMsg carries a deliveries load and the reminders it fired.
type deliveriesLoadedMsg struct {
	projectID string
	views     []app.DeliveryView
	fired     []app.Reminder
	err       error
}

type pollTickMsg struct{}

// ── keys ─────────────────────────────────────────────────────────────────────

type cockpitKeys struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k cockpitKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Quit}
}

func (k cockpitKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultCockpitKeys = cockpitKeys{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev project")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next project")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ── model ────────────────────────────────────────────────────────────────────

// cockpitModel is the field cockpit: a project picker on the left, the
// selected project's blockers and arriving deliveries on the right.
type cockpitModel struct {
	ctx      context.Context
	app      *App
	interval time.Duration

	keys    cockpitKeys
	help    help.Model
	spinner spinner.Model

	projects []*domain.Project
	cursor   int

	snap       app.FeedSnapshot
	deliveries []app.DeliveryView
	reminders  []app.Reminder
	loading    bool
	err        error
}

func newCockpitModel(ctx context.Context, a *App, interval time.Duration) cockpitModel {
	return cockpitModel{
		ctx:      ctx,
		app:      a,
		interval: interval,
		keys:     defaultCockpitKeys,
		help:     help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(formatter.StylePurple),
		),
		loading: true,
	}
}

func (m cockpitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadProjects())
}

func (m cockpitModel) selectedProject() string {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return ""
	}
	return m.projects[m.cursor].ID
}

// ── data loading ─────────────────────────────────────────────────────────────

func (m cockpitModel) loadProjects() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		projects, err := a.Projects.List(ctx, domain.ProjectPlanning, domain.ProjectActive)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m cockpitModel) selectProject(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return tea.Batch(
		func() tea.Msg {
			snap, err := a.Feed.SelectProject(ctx, id)
			return feedLoadedMsg{snap: snap, err: err}
		},
		m.loadDeliveries(id),
	)
}

func (m cockpitModel) refresh(trigger app.FeedTrigger) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		snap, err := a.Feed.Refresh(ctx, trigger)
		return feedLoadedMsg{snap: snap, err: err}
	}
}

func (m cockpitModel) loadDeliveries(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		views, err := a.Deliveries.List(ctx, id)
		if err != nil {
			return deliveriesLoadedMsg{projectID: id, err: err}
		}
		fired := fireDueReminders(ctx, a, views, a.now())
		return deliveriesLoadedMsg{projectID: id, views: views, fired: fired}
	}
}

func (m cockpitModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

// ── update ───────────────────────────────────────────────────────────────────

func (m cockpitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.projects = msg.projects
		if len(m.projects) == 0 {
			return m, nil
		}
		m.cursor = 0
		m.loading = true
		return m, tea.Batch(m.selectProject(m.selectedProject()), m.tick())

	case feedLoadedMsg:
		if errors.Is(msg.err, service.ErrSuperseded) {
			return m, nil
		}
		if msg.snap.ProjectID != m.selectedProject() || msg.snap.Generation < m.snap.Generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.err = msg.err
			}
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		return m, nil

	case deliveriesLoadedMsg:
		if msg.projectID != m.selectedProject() {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.deliveries = msg.views
		m.reminders = append(m.reminders, msg.fired...)
		return m, nil

	case pollTickMsg:
		if m.selectedProject() == "" {
			return m, m.tick()
		}
		return m, tea.Batch(m.refresh(app.TriggerPoll), m.loadDeliveries(m.selectedProject()), m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m cockpitModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		if m.selectedProject() == "" {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.refresh(app.TriggerManual), m.loadDeliveries(m.selectedProject()))
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	}
	return m, nil
}

// moveCursor switches projects. The previous project's items are cleared at
// once so they never show under the new project's name.
func (m cockpitModel) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.projects) {
		return m, nil
	}
	m.cursor = next
	id := m.selectedProject()
	m.snap = app.FeedSnapshot{ProjectID: id}
	m.deliveries = nil
	m.reminders = nil
	m.err = nil
	m.loading = true
	return m, m.selectProject(id)
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m cockpitModel) View() string {
	if len(m.projects) == 0 {
		switch {
		case m.err != nil:
			return formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n"
		case m.loading:
			return m.spinner.View() + " Loading projects…\n"
		}
		return formatter.Dim("No active projects.") + "\n"
	}

	now := m.app.now()
	left := m.renderProjects()

	var right strings.Builder
	right.WriteString(formatter.Header("Blockers") + "\n")
	if m.loading {
		right.WriteString(m.spinner.View() + " ")
	}
	right.WriteString(formatter.FormatFeed(m.snap, now) + "\n\n")
	right.WriteString(formatter.Header("Arriving soon") + "\n")
	for _, r := range m.reminders {
		right.WriteString(formatter.FormatReminder(r, now) + "\n")
	}
	right.WriteString(m.renderArriving(now))
	if m.err != nil {
		right.WriteString("\n" + formatter.StyleYellow.Render(m.err.Error()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(30).PaddingRight(2).Render(left),
		right.String(),
	)
	footer := formatter.Dim(fmt.Sprintf("%s · ", feedTriggerLabel(m.snap.Trigger))) + m.help.View(m.keys)
	return body + "\n\n" + footer + "\n"
}

func (m cockpitModel) renderProjects() string {
	var b strings.Builder
	b.WriteString(formatter.Header("Projects") + "\n")
	for i, p := range m.projects {
		label := formatter.Truncate(domain.CoalesceStr(p.Number, p.Name), 24)
		if i == m.cursor {
			b.WriteString(formatter.StyleHeader.Render("▸ "+label) + "\n")
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	return b.String()
}

func (m cockpitModel) renderArriving(now time.Time) string {
	var soon []app.DeliveryView
	for _, v := range m.deliveries {
		if v.ArrivingSoon || v.Status == domain.DeliveryLate {
			soon = append(soon, v)
		}
	}
	if len(soon) == 0 {
		return formatter.Dim("Nothing due in the next 24 hours.")
	}
	return formatter.FormatDeliveryList(soon, now)
}

// ── command ──────────────────────────────────────────────────────────────────

func newCockpitCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cockpit",
		Short: "Live field cockpit with blockers and arriving deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return errors.New("cockpit needs an interactive terminal; use 'fieldbridge feed PROJECT' instead")
			}
			m := newCockpitModel(cmd.Context(), a, a.Config.PollInterval())
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return quiet(err)
		},
	}
}
