package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/printers"
)

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) updateWallet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state.Back()
	case "a":
		m.group.AgreeRules(!m.group.Agreed())
	case "u":
		m.group.SetAutoAuthorize(!m.group.AutoAuthorize())
	case "r":
		m.showRules = !m.showRules
	case "t":
		// Joining is optional; go straight to the timer.
		m.state.Navigate(app.TimerScreen)
		m.watch.Reset()
		m.watch.Start()
	case "j", "enter":
		if err := m.group.RequestJoin(); err != nil {
			m.setError("Please agree to the rules to join the group.")
			return m, nil
		}
		m.setStatus("")
		m.modalOpen = true
		m.importing = false
		return m, m.run("open", m.flow.Open)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewWallet() string {
	s := m.flow.State()
	lines := []string{
		m.theme.Title.Render("Join a focus group"),
		"",
		fmt.Sprintf("%-14s %s", "Time left", m.theme.Hot.Render(m.countdown.String())),
		fmt.Sprintf("%-14s %d users", "Joined", m.group.Joined()),
		fmt.Sprintf("%-14s $%s", "Collateral", s.Amount),
		"",
		checkbox(m.group.Agreed()) + " Agree to Rules " + m.theme.Muted.Render("(r to view)"),
		checkbox(m.group.AutoAuthorize()) + " Auto-authorize",
	}
	if m.showRules {
		rules := printers.RenderMarkdown(app.GroupRules, m.contentWidth()-4)
		lines = append(lines, "", m.theme.Panel.Render(strings.TrimRight(rules, "\n")))
	}
	lines = append(lines,
		"",
		m.theme.Help.Render("a agree • u auto-authorize • r rules • j join & pay • t skip to timer • esc back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.flow.State()

	if m.importing {
		switch msg.String() {
		case "esc":
			m.importing = false
			m.importInput.Blur()
			return m, nil
		case "enter":
			id := m.importInput.Value()
			m.importing = false
			m.importInput.Blur()
			return m, m.run("import", func(ctx context.Context) error {
				return m.flow.ImportWallet(ctx, id)
			})
		}
		var cmd tea.Cmd
		m.importInput, cmd = m.importInput.Update(msg)
		return m, cmd
	}

	if msg.String() == "esc" {
		m.flow.Close()
		m.modalOpen = false
		return m, nil
	}

	switch s.Step {
	case onboarding.StepLogin:
		switch msg.String() {
		case "e":
			return m, m.run("email login", m.flow.LoginWithEmail)
		case "g":
			return m, m.run("google login", m.flow.LoginWithGoogle)
		case "n":
			return m, m.run("create wallet", m.flow.CreateNewWallet)
		case "m":
			m.importing = true
			m.importInput.Reset()
			return m, m.importInput.Focus()
		}
	case onboarding.StepAuthenticate:
		if msg.String() == "enter" {
			return m, m.run("authenticate", m.flow.Authenticate)
		}
	case onboarding.StepTransfer:
		if msg.String() == "enter" {
			return m, m.run("transfer", m.flow.Transfer)
		}
	case onboarding.StepSuccess:
		if msg.String() == "enter" {
			m.flow.Close()
			m.modalOpen = false
			m.setStatus("Wallet ready.")
		}
	}
	return m, nil
}

func (m Model) viewModal() string {
	s := m.flow.State()
	var lines []string

	switch s.Step {
	case onboarding.StepLogin:
		lines = append(lines,
			m.theme.Title.Render("Connect a wallet to pay $"+s.Amount),
			"",
			"e  Log in with email",
			"g  Log in with Google",
			"n  Create a new wallet",
			"m  Import an existing wallet",
		)
		if m.importing {
			lines = append(lines, "", m.importInput.View())
		}
	case onboarding.StepAuthenticate:
		lines = append(lines, m.theme.Title.Render("Authenticate"), "")
		if s.UserInfo != nil && s.UserInfo.UserID != "" {
			lines = append(lines, "User "+s.UserInfo.UserID)
		}
		lines = append(lines, "Press enter to verify your wallet.")
	case onboarding.StepTransfer:
		lines = append(lines, m.theme.Title.Render("Confirm payment"), "")
		if s.WalletInfo != nil {
			lines = append(lines, fmt.Sprintf("%d wallet(s) for %s", len(s.WalletInfo.Wallets), s.WalletInfo.UserID))
		}
		for _, b := range s.Balances {
			lines = append(lines, "Balance "+b.Display())
		}
		lines = append(lines, "", "Press enter to pay "+m.theme.Hot.Render("$"+s.Amount)+".")
	case onboarding.StepSuccess:
		lines = append(lines, m.theme.Success.Render("All set!"), "", "Press enter to continue.")
	}

	if s.TransferStatus != "" {
		lines = append(lines, "", m.theme.Muted.Render(s.TransferStatus))
	}
	if s.Loading {
		lines = append(lines, "", m.theme.Muted.Render("Working..."))
	}
	if s.Error != "" {
		lines = append(lines, "", m.theme.Error.Render(m.wrap(s.Error)))
	}
	lines = append(lines, "", m.theme.Help.Render("esc close"))
	return m.theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
