package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/commands/options"
)

var (
	output     = &options.OutputOptions{}
	walletOpts = &options.WalletOptions{}
	storeOpts  = &options.StoreOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "focussync",
		Short: options.Wrap80("Focus sessions, saved tasks and group payments on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddStoreArgs(cmd, storeOpts)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addSessions(topLevel)
	addTask(topLevel)
	addWallet(topLevel)
	addServeMock(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
