package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/localops/copilot/cli/apiclient"
)

// pollInterval is how often the watch TUI re-fetches run state from the
// control API. Run steps run sandboxed commands on the order of seconds,
// so sub-second polling buys nothing but load on the API.
const pollInterval = 1 * time.Second

// keyMap defines the watch TUI's key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type runFetchedMsg struct {
	detail *apiclient.RunDetail
	err    error
}

// WatchModel is the Bubble Tea model behind `localopsd watch`. It polls a
// single run's status and step list until the run reaches a terminal
// state, or the user quits.
type WatchModel struct {
	client *apiclient.Client
	runID  int64

	detail   *apiclient.RunDetail
	err      error
	quitting bool
}

// NewWatchModel creates a watch model for runID, polled through client.
func NewWatchModel(client *apiclient.Client, runID int64) WatchModel {
	return WatchModel{client: client, runID: runID}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return m.fetch()
}

func (m WatchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		detail, err := m.client.GetRun(ctx, m.runID)
		return runFetchedMsg{detail: detail, err: err}
	}
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	case runFetchedMsg:
		m.detail = msg.detail
		m.err = msg.err
		if msg.err != nil || msg.detail.Status.Terminal() {
			// Stop polling; the user reviews the final state and quits.
			return m, nil
		}
		return m, tea.Tick(pollInterval, func(time.Time) tea.Msg { return refreshMsg{} })
	case refreshMsg:
		return m, m.fetch()
	}

	return m, nil
}

// refreshMsg fires pollInterval after the last successful fetch.
type refreshMsg struct{}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("error watching run: %v\n", m.err))
	}
	if m.detail == nil {
		return "loading run...\n"
	}
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Run #%d", m.detail.ID)))
	b.WriteString("\n\n")

	status := string(m.detail.Status)
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Status:"), StateStyle(strings.ToLower(status)).Render(status)))
	b.WriteString(fmt.Sprintf("%s %s\n\n", LabelStyle.Render("Risk:"), ValueStyle.Render(string(m.detail.RiskLevel))))

	b.WriteString(LabelStyle.Render("Steps:"))
	b.WriteString("\n")
	for _, step := range m.detail.Steps {
		stepStatus := string(step.Status)
		line := fmt.Sprintf("  [%d] %-9s %s", step.StepNo, strings.ToLower(stepStatus), step.Command)
		b.WriteString(StateStyle(strings.ToLower(stepStatus)).Render(line))
		b.WriteString("\n")
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	if m.detail.Status.Terminal() {
		help = HelpStyle.Render("Run finished — press q or Ctrl+C to exit")
	}
	return BoxStyle.Render(b.String()) + "\n" + help
}

// RunWatchTUI starts the interactive watch view for runID and blocks
// until the run finishes or the user quits.
func RunWatchTUI(client *apiclient.Client, runID int64) error {
	p := tea.NewProgram(NewWatchModel(client, runID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
