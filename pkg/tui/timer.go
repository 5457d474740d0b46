package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/timeutil"
)

func (m Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "p":
		if m.watch.Toggle() {
			m.setStatus("")
		} else {
			m.setStatus("Paused")
		}
	case "s":
		m.watch.Skip()
	case "f", "enter":
		m.watch.Pause()
		elapsed := m.watch.Elapsed()
		return m, func() tea.Msg {
			rec, err := m.state.CompleteSession(m.ctx, elapsed)
			return sessionSavedMsg{rec: rec, err: err}
		}
	case "esc":
		m.watch.Pause()
		m.state.Back()
	}
	return m, nil
}

func (m Model) viewTimer() string {
	d := m.state.Draft()
	elapsed := m.watch.Elapsed()
	band := timeutil.BandFor(elapsed)
	accent := Accent(d.Vibe, band)

	clock := m.theme.Clock.
		Foreground(accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Render(timeutil.FormatClock(elapsed))

	state := "running"
	if !m.watch.Running() {
		state = "paused"
	}

	lines := []string{
		m.theme.Title.Render(d.Name),
		m.theme.Muted.Render(fmt.Sprintf("%s · %d min planned · %s", d.Vibe, d.ExpectedDuration, strings.Join(d.SelectedTags, ", "))),
		"",
		clock,
		lipgloss.NewStyle().Foreground(accent).Render(band.String()) + "  " + m.theme.Muted.Render(state),
		"",
		m.theme.Help.Render("space pause/resume • s skip to next block • f finish • esc back"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) updateCompletion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "n":
		m.state.BeginNewTask()
		m.setStatus("")
	case "i":
		m.state.Navigate(app.InsightsScreen)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewCompletion() string {
	rec, ok := m.state.LastSession()
	if !ok {
		return m.theme.Muted.Render("No session recorded yet.") + "\n\n" +
			m.theme.Help.Render("enter new task • i insights")
	}
	band := timeutil.BandFor(rec.Duration())
	lines := []string{
		m.theme.Title.Render("Session complete"),
		"",
		fmt.Sprintf("%-10s %s", "Task", rec.TaskName),
		fmt.Sprintf("%-10s %s (%s)", "Focused", timeutil.FormatClock(rec.Duration()), band),
		fmt.Sprintf("%-10s %s", "Intensity", rec.Intensity),
		fmt.Sprintf("%-10s %s", "Earned", m.theme.Hot.Render(fmt.Sprintf("+%.1f tokens", rec.TokensEarned))),
		"",
		m.theme.Help.Render("enter new task • i insights • q quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) updateInsights(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.state.Back()
	case "r":
		return m, m.loadCmd()
	case "c":
		if err := m.state.ClearSessions(); err != nil {
			m.setError("Could not clear sessions: " + err.Error())
		} else {
			m.setStatus("Session history cleared")
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewInsights() string {
	records := m.state.Sessions()
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Insights"))
	b.WriteString("\n\n")
	if len(records) == 0 {
		b.WriteString(m.theme.Muted.Render("No sessions yet. Finish a focus session to see it here."))
	} else {
		report := m.state.Report(time.Time{}, time.Now())
		fmt.Fprintf(&b, "Focused %s over %d sessions, %.1f tokens\n\n",
			timeutil.FormatWindow(report.Focused), len(report.Sessions), report.Tokens)
		for _, rec := range report.Sessions {
			b.WriteString(m.sessionLine(rec))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("Only the three most recent sessions are kept."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("r reload • c clear • esc back"))
	return b.String()
}

func (m Model) sessionLine(rec session.Record) string {
	band := timeutil.BandFor(rec.Duration())
	bandStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(band.Color()))
	return fmt.Sprintf("%s  %-28s %s  %s  %s",
		m.theme.Muted.Render(rec.Timestamp.Local().Format("Jan 2 15:04")),
		rec.TaskName,
		timeutil.FormatClock(rec.Duration()),
		bandStyle.Render(fmt.Sprintf("%-10s", band)),
		rec.Intensity,
	)
}
