package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// Run starts the program and blocks until the user quits or ctx is done.
// The prompter, when set, is attached so wallet challenges are asked inside
// the UI.
func Run(ctx context.Context, opts Options, prompter *Prompter) error {
	if opts.State == nil {
		return errors.New("tui: application state is required")
	}
	var p *tea.Program
	send := func(msg tea.Msg) {
		go p.Send(msg)
	}
	if prompter != nil {
		prompter.Attach(send)
	}

	p = tea.NewProgram(NewModel(ctx, opts, send), tea.WithAltScreen(), tea.WithContext(ctx))
	if err := opts.State.Watch(ctx); err != nil {
		opts.Logger.Warn().Err(err).Msg("tui: session watch unavailable")
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return errors.Wrap(err, "tui")
}
