package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
)

type setupField int

const (
	fieldName setupField = iota
	fieldVibe
	fieldDuration
	fieldTags
	fieldPerMinute
	fieldTotal
	fieldVideo
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Task", "Vibe", "Duration", "Tags", "Cost per minute", "Total cost", "Reference video",
}

const durationStep = 15

// enterSetup syncs the inputs with the draft and focuses the name field.
func (m Model) enterSetup() (tea.Model, tea.Cmd) {
	d := m.state.Draft()
	m.name.SetValue(d.Name)
	m.perMin.Reset()
	m.total.Reset()
	m.video.Reset()
	m.tagCursor = 0
	return m.focusField(fieldName)
}

func (m *Model) input(f setupField) *textinput.Model {
	switch f {
	case fieldName:
		return &m.name
	case fieldPerMinute:
		return &m.perMin
	case fieldTotal:
		return &m.total
	case fieldVideo:
		return &m.video
	}
	return nil
}

func (m Model) focusField(f setupField) (tea.Model, tea.Cmd) {
	if in := m.input(m.field); in != nil {
		in.Blur()
	}
	m.field = f
	if in := m.input(f); in != nil {
		return m, in.Focus()
	}
	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.focusField((m.field + 1) % fieldCount)
	case "shift+tab":
		return m.focusField((m.field + fieldCount - 1) % fieldCount)
	case "esc":
		m.state.Back()
		return m, nil
	case "ctrl+s":
		pct := m.state.SyncEstimate()
		m.setStatus(fmt.Sprintf("AI estimate synced: %d%% on track", pct))
		return m, nil
	case "ctrl+t":
		return m.submit(app.TimerScreen)
	case "ctrl+g":
		return m.submit(app.WalletScreen)
	}

	switch m.field {
	case fieldVibe:
		switch msg.String() {
		case "left", "h":
			m.state.UpdateDraft(func(d *task.Draft) { d.SetVibe(d.Vibe.Prev()) })
		case "right", "l":
			m.state.UpdateDraft(func(d *task.Draft) { d.SetVibe(d.Vibe.Next()) })
		}
		return m, nil
	case fieldDuration:
		switch msg.String() {
		case "left", "h", "-":
			m.state.UpdateDraft(func(d *task.Draft) { d.SetDuration(d.ExpectedDuration - durationStep) })
		case "right", "l", "+":
			m.state.UpdateDraft(func(d *task.Draft) { d.SetDuration(d.ExpectedDuration + durationStep) })
		}
		return m, nil
	case fieldTags:
		switch msg.String() {
		case "left", "h":
			m.tagCursor = (m.tagCursor + len(task.AvailableTags) - 1) % len(task.AvailableTags)
		case "right", "l":
			m.tagCursor = (m.tagCursor + 1) % len(task.AvailableTags)
		case " ", "enter":
			tag := task.AvailableTags[m.tagCursor]
			m.state.UpdateDraft(func(d *task.Draft) { d.ToggleTag(tag) })
		}
		return m, nil
	case fieldPerMinute, fieldTotal:
		switch msg.String() {
		case "enter":
			perMin, total := m.perMin.Value(), m.total.Value()
			m.state.UpdateDraft(func(d *task.Draft) { d.AddCostTags(perMin, total) })
			m.perMin.Reset()
			m.total.Reset()
			return m, nil
		case "ctrl+x":
			m.state.UpdateDraft(func(d *task.Draft) {
				if n := len(d.CostTags); n > 0 {
					d.RemoveCostTag(d.CostTags[n-1])
				}
			})
			return m, nil
		}
	case fieldVideo:
		switch msg.String() {
		case "enter":
			link, err := task.NewVideoLink(m.video.Value(), "")
			if err != nil {
				m.setError(err.Error())
				return m, nil
			}
			added := false
			m.state.UpdateDraft(func(d *task.Draft) { added = d.AddVideo(link) })
			if added {
				m.setStatus(fmt.Sprintf("Added %s video", link.Platform))
			} else {
				m.setError("That video is already attached")
			}
			m.video.Reset()
			return m, nil
		case "ctrl+x":
			m.state.UpdateDraft(func(d *task.Draft) {
				if n := len(d.VideoTags); n > 0 {
					d.RemoveVideo(d.VideoTags[n-1].URL)
				}
			})
			return m, nil
		}
	}

	in := m.input(m.field)
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if m.field == fieldName {
		name := m.name.Value()
		m.state.UpdateDraft(func(d *task.Draft) { d.SetName(name) })
	}
	return m, cmd
}

func (m Model) submit(dest app.Screen) (tea.Model, tea.Cmd) {
	if err := m.state.SubmitTask(dest); err != nil {
		if err == app.ErrNameRequired {
			m.setError("Please enter a task name")
		} else {
			m.setError(err.Error())
		}
		return m.focusField(fieldName)
	}
	m.setStatus("")
	m.name.Blur()
	switch dest {
	case app.TimerScreen:
		m.watch.Reset()
		m.watch.Start()
	case app.WalletScreen:
		m.countdown = timeutil.NewCountdown(timeutil.JoinCountdownStart)
	}
	return m, nil
}

func (m Model) viewSetup() string {
	d := m.state.Draft()
	label := func(f setupField) string {
		l := fmt.Sprintf("%-16s", fieldLabels[f])
		if f == m.field {
			return m.theme.Selected.Render("> " + l)
		}
		return "  " + m.theme.Muted.Render(l)
	}

	accent := lipgloss.NewStyle().Foreground(Accent(d.Vibe, timeutil.EaseIn)).Bold(true)

	var tags []string
	for i, tag := range task.AvailableTags {
		box := "[ ]"
		if d.HasTag(tag) {
			box = "[x]"
		}
		cell := box + " " + tag
		if m.field == fieldTags && i == m.tagCursor {
			cell = m.theme.Selected.Render(cell)
		}
		tags = append(tags, cell)
	}

	var videos []string
	for _, v := range d.VideoTags {
		videos = append(videos, fmt.Sprintf("  %s %s", m.theme.Muted.Render(string(v.Platform)), v.Title))
	}

	lines := []string{
		m.theme.Title.Render("Set up your task"),
		"",
		label(fieldName) + m.name.View(),
		label(fieldVibe) + accent.Render("‹ "+string(d.Vibe)+" ›"),
		label(fieldDuration) + fmt.Sprintf("%d min", d.ExpectedDuration),
		label(fieldTags) + m.wrap(strings.Join(tags, "  ")),
		label(fieldPerMinute) + m.perMin.View(),
		label(fieldTotal) + m.total.View(),
		"  " + m.theme.Muted.Render(fmt.Sprintf("%-16s", "Cost tags")) + strings.Join(d.CostTags, "  "),
		label(fieldVideo) + m.video.View(),
	}
	lines = append(lines, videos...)
	lines = append(lines,
		"",
		fmt.Sprintf("AI estimate: %s", m.theme.Hot.Render(fmt.Sprintf("%d%%", d.AIEstimationPercent))),
		"",
		m.theme.Help.Render("tab next field • ctrl+s sync estimate • ctrl+t start timer • ctrl+g join group • ctrl+x remove last • esc back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
