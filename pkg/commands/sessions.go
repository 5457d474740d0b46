package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/commands/options"
	"tableflip.dev/focussync/pkg/printers"
	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
)

func addSessions(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}
	oo := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "list recent focus sessions",
		Long: `Sessions lists the most recent completed focus sessions. Only the three
most recent are kept.

Examples:
  focussync sessions
  focussync sessions --last 3d
  focussync sessions --calendar --on 2025-3
  focussync sessions --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			err := listSessions(cmd.Context(), wo, oo)
			return output.HandleError(err)
		},
	}

	options.AddWindowArgs(cmd, wo)
	options.AddOnArgs(cmd, oo)
	options.AddOutputArg(cmd, output)

	addSessionsRecord(cmd)
	addSessionsClear(cmd)
	topLevel.AddCommand(cmd)
}

func listSessions(ctx context.Context, wo *options.WindowOptions, oo *options.OnOptions) error {
	e, err := loadEnv("sessions")
	if err != nil {
		return err
	}
	p, err := e.persistence()
	if err != nil {
		return err
	}
	state := app.New(p, app.WithLogger(e.log))
	records, err := state.Load(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	var since time.Time
	label := "all"
	if wo.Last != "" {
		window, l, err := timeutil.ParseWindow(wo.Last)
		if err != nil {
			return err
		}
		since, label = now.Add(-window), l
	}
	report := state.Report(since, now)

	if output.JSON {
		return output.Print(report)
	}

	pp := &printers.PrettyPrint{}
	if wo.Calendar {
		on, err := oo.GetOn(now)
		if err != nil {
			return err
		}
		pp.Calendar(on, records...)
	}
	if wo.Last == "" {
		pp.Sessions(records...)
		return nil
	}
	pp.Report(report, label)
	return nil
}

func addSessionsClear(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "delete the stored session history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv("sessions")
			if err != nil {
				return err
			}
			p, err := e.persistence()
			if err != nil {
				return err
			}
			if err := app.New(p).ClearSessions(); err != nil {
				return output.HandleError(err)
			}
			_, _ = fmt.Fprintln(color.Output, "Session history cleared.")
			return nil
		},
	}
	parent.AddCommand(cmd)
}

func addSessionsRecord(parent *cobra.Command) {
	var (
		name    string
		vibe    string
		elapsed string
		tags    []string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "record a finished focus session",
		Example: `
focussync sessions record --task "Write report" --elapsed 45m
focussync sessions record --task "Code review" --vibe focus --elapsed 1h30m --tag Code --tag Review
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv("sessions")
			if err != nil {
				return err
			}
			p, err := e.persistence()
			if err != nil {
				return err
			}

			length, _, err := timeutil.ParseWindow(elapsed)
			if err != nil {
				return output.HandleError(err)
			}
			v := task.DefaultVibe
			if vibe != "" {
				if v, err = task.ParseVibe(vibe); err != nil {
					return output.HandleError(err)
				}
			}

			state := app.New(p, app.WithLogger(e.log))
			if _, err := state.Load(cmd.Context()); err != nil {
				return output.HandleError(err)
			}
			state.UpdateDraft(func(d *task.Draft) {
				d.SetName(name)
				d.SetVibe(v)
				for _, tag := range tags {
					if !d.HasTag(tag) {
						d.ToggleTag(tag)
					}
				}
			})
			if err := state.SubmitTask(app.TimerScreen); err != nil {
				return output.HandleError(err)
			}
			rec, err := state.CompleteSession(cmd.Context(), length)
			if err != nil {
				return output.HandleError(err)
			}

			if output.JSON {
				return output.Print(rec)
			}
			pp := &printers.PrettyPrint{}
			pp.Sessions(rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "task", "", "Name of the task.")
	cmd.Flags().StringVar(&vibe, "vibe", "", "Vibe the task was set up under. Defaults to calm.")
	cmd.Flags().StringVar(&elapsed, "elapsed", "25m", "Time spent focused, e.g. 45m or 1h30m.")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag to attach. May be repeated.")
	_ = cmd.RegisterFlagCompletionFunc("vibe", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return vibeCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}
