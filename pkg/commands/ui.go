package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/commands/options"
	"tableflip.dev/focussync/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	var amount string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
focussync ui
focussync ui --ephemeral
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("tui")
			if err != nil {
				return err
			}
			p, err := e.persistence()
			if err != nil {
				return err
			}

			prompter := tui.NewPrompter()
			client := e.walletClient(prompter, prompter)
			state := app.New(p, app.WithLogger(e.log))

			return tui.Run(cmd.Context(), tui.Options{
				State:      state,
				Wallet:     client,
				Onboarding: e.onboardingOptions(amount),
				Group:      app.NewGroup(),
				Logger:     e.log,
			}, prompter)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Group payment amount in USD. Defaults to payment_amount from the config.")
	options.AddWalletArgs(cmd, walletOpts)

	topLevel.AddCommand(cmd)
}
