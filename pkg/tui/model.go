// Package tui is the terminal interface: a welcome screen with saved tasks,
// task setup, the focus timer, completion, insights and the group payment
// screen.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/timeutil"
	"tableflip.dev/focussync/pkg/wallet"
)

// ─── messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

type changeMsg app.Change

type flowMsg onboarding.State

type paymentMsg wallet.MessageResult

type loadedMsg struct{ err error }

type actionDoneMsg struct {
	action string
	err    error
}

type sessionSavedMsg struct {
	rec session.Record
	err error
}

// Options wires a Model to its collaborators.
type Options struct {
	State      *app.State
	Wallet     onboarding.Wallet
	Onboarding onboarding.Options
	Group      *app.Group
	Logger     zerolog.Logger
}

// Model is the root Bubble Tea model. Shared state lives in app.State and
// the onboarding workflow; the model keeps only input widgets and cursors.
type Model struct {
	ctx   context.Context
	state *app.State
	flow  *onboarding.Workflow
	group *app.Group
	log   zerolog.Logger
	theme Theme

	watch     *timeutil.Stopwatch
	countdown *timeutil.Countdown

	width  int
	height int
	status string
	failed bool

	presetCursor int

	field     setupField
	tagCursor int
	name      textinput.Model
	perMin    textinput.Model
	total     textinput.Model
	video     textinput.Model

	modalOpen   bool
	importing   bool
	importInput textinput.Model
	showRules   bool

	prompt *promptMsg
	answer textinput.Model
}

// NewModel builds the root model. send delivers messages from background
// work to the running program and may be nil in tests.
func NewModel(ctx context.Context, opts Options, send func(tea.Msg)) Model {
	if send == nil {
		send = func(tea.Msg) {}
	}
	if opts.Group == nil {
		opts.Group = app.NewGroup()
	}

	flowOpts := opts.Onboarding
	onSuccess := flowOpts.OnSuccess
	flowOpts.OnSuccess = func(r wallet.MessageResult) {
		if onSuccess != nil {
			onSuccess(r)
		}
		send(paymentMsg(r))
	}
	if flowOpts.Logger == nil {
		log := opts.Logger
		flowOpts.Logger = &log
	}
	flow := onboarding.New(opts.Wallet, flowOpts)
	flow.Subscribe(func(s onboarding.State) { send(flowMsg(s)) })
	opts.State.Subscribe(func(c app.Change) { send(changeMsg(c)) })

	m := Model{
		ctx:         ctx,
		state:       opts.State,
		flow:        flow,
		group:       opts.Group,
		log:         opts.Logger,
		theme:       DefaultTheme(),
		watch:       &timeutil.Stopwatch{},
		countdown:   timeutil.NewCountdown(timeutil.JoinCountdownStart),
		name:        newInput("What are you working on?", 80),
		perMin:      newInput("per minute, e.g. 2", 8),
		total:       newInput("total, e.g. 100", 8),
		video:       newInput("https://youtube.com/watch?v=...", 200),
		importInput: newInput("existing user id", 64),
		answer:      newInput("", 128),
	}
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Flow exposes the onboarding workflow driven by the wallet screen.
func (m Model) Flow() *onboarding.Workflow {
	return m.flow
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.loadCmd())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.state.Load(m.ctx)
		return loadedMsg{err: err}
	}
}

// run executes a workflow action off the event loop.
func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(m.ctx)}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.failed = true
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		switch m.state.Screen() {
		case app.TimerScreen:
			m.watch.Tick()
		case app.WalletScreen:
			m.countdown.Tick()
		}
		return m, tick()

	case promptMsg:
		m.prompt = &msg
		m.answer.Reset()
		m.answer.EchoMode = textinput.EchoNormal
		if msg.Kind == wallet.ChallengePIN {
			m.answer.EchoMode = textinput.EchoPassword
		}
		m.answer.Placeholder = msg.Question
		return m, m.answer.Focus()

	case changeMsg, flowMsg:
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("tui: load sessions")
			m.setError("Could not load sessions: " + msg.err.Error())
		}
		return m, nil

	case sessionSavedMsg:
		if msg.err != nil {
			m.setError("Could not save session: " + msg.err.Error())
			return m, nil
		}
		m.watch.Reset()
		m.setStatus("Session saved.")
		return m, nil

	case actionDoneMsg:
		switch {
		case msg.err == nil, errors.Is(msg.err, onboarding.ErrClosed):
		case errors.Is(msg.err, onboarding.ErrBusy):
			m.setStatus("Please wait...")
		default:
			m.log.Debug().Err(msg.err).Str("action", msg.action).Msg("tui: action failed")
		}
		return m, nil

	case paymentMsg:
		joined := m.group.PaymentSucceeded()
		m.flow.Close()
		m.modalOpen = false
		m.setStatus("Payment successful! Welcome to the group!")
		m.log.Info().Int("joined", joined).Str("transaction", msg.TransactionID).Msg("tui: joined group")
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		if m.modalOpen {
			return m.updateModal(msg)
		}
		switch m.state.Screen() {
		case app.WelcomeScreen:
			return m.updateWelcome(msg)
		case app.TaskSetupScreen:
			return m.updateSetup(msg)
		case app.TimerScreen:
			return m.updateTimer(msg)
		case app.CompletionScreen:
			return m.updateCompletion(msg)
		case app.InsightsScreen:
			return m.updateInsights(msg)
		case app.WalletScreen:
			return m.updateWallet(msg)
		}
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.prompt.reply <- m.answer.Value()
		m.prompt = nil
		m.answer.Blur()
		return m, nil
	case "esc":
		m.prompt.reply <- ""
		m.prompt = nil
		m.answer.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var body string
	switch m.state.Screen() {
	case app.WelcomeScreen:
		body = m.viewWelcome()
	case app.TaskSetupScreen:
		body = m.viewSetup()
	case app.TimerScreen:
		body = m.viewTimer()
	case app.CompletionScreen:
		body = m.viewCompletion()
	case app.InsightsScreen:
		body = m.viewInsights()
	case app.WalletScreen:
		body = m.viewWallet()
	}
	if m.modalOpen {
		body = m.viewModal()
	}
	if m.prompt != nil {
		body = m.viewPrompt()
	}

	header := m.theme.Header.Render("FocusSync")
	if m.state.Offline() {
		header += "  " + m.theme.Muted.Render("offline")
	}

	parts := []string{header, "", body}
	if m.status != "" {
		style := m.theme.Success
		if m.failed {
			style = m.theme.Error
		}
		parts = append(parts, "", style.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewPrompt() string {
	lines := []string{m.theme.Title.Render(m.prompt.Question)}
	if m.prompt.URL != "" {
		lines = append(lines, "", m.wrap(m.prompt.URL))
	}
	lines = append(lines, "", m.answer.View(), "", m.theme.Help.Render("enter submit • esc cancel"))
	return m.theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
