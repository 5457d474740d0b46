package commands

import (
	"context"
	"fmt"
	"unicode"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"tableflip.dev/focussync/pkg/wallet"
)

// promptResponder answers wallet challenges on the terminal.
type promptResponder struct{}

var (
	_ wallet.ChallengeResponder = promptResponder{}
	_ wallet.AuthCodeProvider   = promptResponder{}
)

func (promptResponder) Answer(ctx context.Context, kind wallet.ChallengeKind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := promptui.Prompt{
		Label:     kind.Prompt(),
		Templates: promptTemplates(),
		Validate:  validatorFor(kind),
	}
	if kind == wallet.ChallengePIN {
		prompt.Mask = '*'
	}
	return runPrompt(prompt)
}

func (promptResponder) AuthCode(ctx context.Context, authURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(color.Output, "Open this URL and sign in with Google:")
	_, _ = fmt.Fprintln(color.Output, authURL)
	prompt := promptui.Prompt{
		Label:     "Authorization code",
		Templates: promptTemplates(),
	}
	return runPrompt(prompt)
}

// runPrompt maps an interrupted prompt to an empty answer, which the wallet
// treats as cancelled.
func runPrompt(p promptui.Prompt) (string, error) {
	result, err := p.Run()
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return "", nil
	default:
		return "", err
	}
}

func promptTemplates() *promptui.PromptTemplates {
	return &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
}

func validatorFor(kind wallet.ChallengeKind) promptui.ValidateFunc {
	switch kind {
	case wallet.ChallengePIN:
		return func(input string) error {
			if len(input) < 6 {
				return errors.New("PIN must be at least 6 digits")
			}
			for _, r := range input {
				if !unicode.IsDigit(r) {
					return errors.New("PIN must be digits only")
				}
			}
			return nil
		}
	default:
		return nil
	}
}
