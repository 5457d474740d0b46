package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/timeutil"
)

// WindowOptions
type WindowOptions struct {
	Last     string
	Calendar bool
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVar(&o.Last, "last", "",
		Wrap80("Only include sessions in this window, for example 3d or 1w2d. Empty shows everything stored. Default window is "+timeutil.DefaultWindow+" when set without a value."))
	cmd.Flags().Lookup("last").NoOptDefVal = timeutil.DefaultWindow
	cmd.Flags().BoolVar(&o.Calendar, "calendar", false,
		"Show a month calendar with session days highlighted.")
}
