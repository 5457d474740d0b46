package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/task"
)

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 72
	}
	return max(m.width-4, 20)
}

func (m Model) wrap(s string) string {
	return wordwrap.String(s, m.contentWidth())
}

func (m Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	presets := task.Presets()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(presets)-1 {
			m.presetCursor++
		}
	case "enter":
		m.state.ApplyPreset(presets[m.presetCursor])
		return m.enterSetup()
	case "n":
		m.state.UpdateDraft(func(d *task.Draft) { d.Reset() })
		m.state.Navigate(app.TaskSetupScreen)
		return m.enterSetup()
	case "i":
		m.state.Navigate(app.InsightsScreen)
	}
	return m, nil
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Saved tasks"))
	b.WriteString("\n\n")

	nameWidth := min(m.contentWidth()-20, 40)
	for i, p := range task.Presets() {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.presetCursor {
			cursor = "> "
			style = m.theme.Selected
		}
		name := truncate.StringWithTail(p.Name, uint(nameWidth), "…")
		line := fmt.Sprintf("%s%-*s %s", cursor, nameWidth, name, m.theme.Muted.Render(p.Time+" · "+string(p.Vibe)))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("↑/↓ choose • enter load • n new task • i insights • q quit"))
	return b.String()
}
