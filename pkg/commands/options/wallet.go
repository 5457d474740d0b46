package options

import (
	"github.com/spf13/cobra"
)

// WalletOptions override wallet settings from the config file.
type WalletOptions struct {
	ServerURL string
	Strict    bool
}

func AddWalletArgs(cmd *cobra.Command, o *WalletOptions) {
	cmd.PersistentFlags().StringVar(&o.ServerURL, "server", "",
		"Application server URL. Defaults to app_server_url from the config.")
	cmd.PersistentFlags().BoolVar(&o.Strict, "strict", false,
		Wrap80("Report every wallet failure instead of falling back to mock results."))
}

// StoreOptions
type StoreOptions struct {
	Ephemeral bool
}

func AddStoreArgs(cmd *cobra.Command, o *StoreOptions) {
	cmd.PersistentFlags().BoolVar(&o.Ephemeral, "ephemeral", false,
		"Keep sessions in memory only.")
}
