// internal/tui/watch.go
// Package tui provides the interactive live-jobs view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/poll"
	"github.com/boxworks/labelhub/internal/poller"
	"github.com/boxworks/labelhub/internal/util"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	settledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
)

// snapshotMsg carries one poll cycle's state into the UI loop.
type snapshotMsg poller.Snapshot

type watchModel struct {
	ctx     context.Context
	cfg     *appconfig.Config
	client  *api.Client
	poller  *poller.Poller
	program *tea.Program

	table    table.Model
	spinner  spinner.Model
	snapshot poller.Snapshot
	started  bool
	err      error
	width    int
}

func newWatchModel(ctx context.Context, cfg *appconfig.Config, client *api.Client) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "Job", Width: 12},
		{Title: "Engine", Width: 10},
		{Title: "Dataset", Width: 14},
		{Title: "Preprocessing", Width: 17},
		{Title: "Status", Width: 10},
		{Title: "Progress", Width: 9},
		{Title: "Created", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return &watchModel{
		ctx:     ctx,
		cfg:     cfg,
		client:  client,
		spinner: s,
		table:   t,
	}
}

func shortID(id string) string {
	return util.TruncateRunes(id, 12)
}

func styledStatus(s api.JobStatus) string {
	switch s {
	case api.StatusRunning:
		return runningStyle.Render(string(s))
	case api.StatusCompleted:
		return doneStyle.Render(string(s))
	case api.StatusFailed, api.StatusCancelled:
		return failedStyle.Render(string(s))
	}
	return string(s)
}

func (m *watchModel) startPolling() tea.Cmd {
	return func() tea.Msg {
		if err := m.poller.WatchAll(m.ctx); err != nil {
			return err
		}
		return nil
	}
}

func (m *watchModel) Init() tea.Cmd {
	m.started = true
	return tea.Batch(m.spinner.Tick, m.startPolling())
}

func (m *watchModel) settled() bool {
	phase := m.poller.Phase()
	return phase == poll.PhaseDone || phase == poll.PhaseError
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.poller.Stop()
			return m, tea.Quit
		case "r":
			if m.settled() {
				m.err = nil
				return m, m.startPolling()
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(msg.Height - 7)
	case snapshotMsg:
		m.snapshot = poller.Snapshot(msg)
		m.table.SetRows(m.rows())
	case error:
		m.err = msg
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *watchModel) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.snapshot.Jobs))
	for _, job := range m.snapshot.Jobs {
		rows = append(rows, table.Row{
			shortID(job.JobID),
			string(job.Engine),
			job.DatasetVersion + "/" + job.DatasetName,
			string(job.Preprocessing),
			styledStatus(job.Status),
			fmt.Sprintf("%.0f%%", job.Progress),
			util.FormatAge(job.CreatedAt, m.snapshot.UpdatedAt),
		})
	}
	return rows
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("labelhub: inference jobs"))
	b.WriteString("\n\n")
	b.WriteString(borderStyle.Render(m.table.View()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(failedStyle.Render(fmt.Sprintf("error: %v", m.err)))
	case m.settled():
		b.WriteString(settledStyle.Render("no active jobs; press r to re-poll"))
	default:
		b.WriteString(m.spinner.View() + statusStyle.Render(" polling..."))
	}
	b.WriteString(statusStyle.Render("  (q to quit)"))
	b.WriteString("\n")
	return b.String()
}

// StartWatch runs the live jobs view until the user quits. Snapshots flow in
// from the poller's update callback; the UI never fetches on its own.
func StartWatch(ctx context.Context, cfg *appconfig.Config) error {
	client := api.New(cfg)
	m := newWatchModel(ctx, cfg, client)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p
	m.poller = poller.New(client, cfg, func(s poller.Snapshot) {
		p.Send(snapshotMsg(s))
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch view: %w", err)
	}
	m.poller.Stop()
	return nil
}
