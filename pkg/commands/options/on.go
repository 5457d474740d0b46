package options

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOMonth = "2006-1"
	layoutISOShort = "1/2"
)

// OnOptions picks the day, or month, a command looks at.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2025-2-28", --on="2025-2" or --on="2/28".`)
}

// GetOn parses --on relative to now; an empty flag means now.
func (o *OnOptions) GetOn(now time.Time) (time.Time, error) {
	if o.OnString == "" {
		return now, nil
	}
	for _, layout := range []string{layoutISO, layoutISOMonth} {
		if t, err := time.ParseInLocation(layout, o.OnString, now.Location()); err == nil {
			return t, nil
		}
	}
	t, err := time.ParseInLocation(layoutISOShort, o.OnString, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	// A bare month/day means this year.
	return t.AddDate(now.Year(), 0, 0), nil
}
