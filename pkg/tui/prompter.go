package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/focussync/pkg/wallet"
)

var errDetached = errors.New("tui: prompter is not attached to a program")

// promptMsg asks the user for one value. The answer, or "" when dismissed,
// is delivered on reply.
type promptMsg struct {
	Kind     wallet.ChallengeKind
	Question string
	URL      string
	reply    chan string
}

// Prompter answers wallet challenges and OAuth code requests by asking the
// user inside the running program.
type Prompter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var (
	_ wallet.ChallengeResponder = (*Prompter)(nil)
	_ wallet.AuthCodeProvider   = (*Prompter)(nil)
)

func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach routes prompts to send, usually the program's Send.
func (p *Prompter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	p.send = send
	p.mu.Unlock()
}

func (p *Prompter) Answer(ctx context.Context, kind wallet.ChallengeKind) (string, error) {
	return p.ask(ctx, promptMsg{Kind: kind, Question: kind.Prompt()})
}

func (p *Prompter) AuthCode(ctx context.Context, authURL string) (string, error) {
	return p.ask(ctx, promptMsg{Question: "Sign in with Google, then paste the authorization code", URL: authURL})
}

func (p *Prompter) ask(ctx context.Context, msg promptMsg) (string, error) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send == nil {
		return "", errDetached
	}

	msg.reply = make(chan string, 1)
	send(msg)
	select {
	case answer := <-msg.reply:
		return answer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
