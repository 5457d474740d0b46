package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/commands/options"
	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
)

func addTask(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "inspect saved tasks and reference videos",
	}

	addTaskVideo(cmd)
	addTaskPresets(cmd)
	addTaskDuration(cmd)
	topLevel.AddCommand(cmd)
}

func addTaskVideo(parent *cobra.Command) {
	var title string
	cmd := &cobra.Command{
		Use:   "video <url>",
		Short: "classify a reference video link",
		Example: `
focussync task video https://youtu.be/AOZulahHWSk
focussync task video https://www.tiktok.com/@user/video/123 --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := task.NewVideoLink(args[0], title)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(link)
			}
			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("Platform"), string(link.Platform))
			tbl.AddRow(bold.Sprint("Title"), link.Title)
			tbl.AddRow(bold.Sprint("Thumbnail"), link.ThumbnailURL)
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title to show for the link. Defaults to the URL.")
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addTaskPresets(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in saved tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets := task.Presets()
			if output.JSON {
				return output.Print(presets)
			}
			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = 36
			tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Vibe"), bold.Sprint("Time"), bold.Sprint("Videos"))
			for _, p := range presets {
				tbl.AddRow(p.ID, p.Name, string(p.Vibe), p.Time, len(p.VideoTags))
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addTaskDuration(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "duration <minutes|window>",
		Short: "normalize an expected duration into the allowed range",
		Example: `
focussync task duration 90
focussync task duration 2h
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := timeutil.ParseMinutes(args[0])
			if err != nil {
				return output.HandleError(err)
			}
			clamped := task.ClampDuration(minutes)
			if output.JSON {
				return output.Print(map[string]int{"requested": minutes, "minutes": clamped})
			}
			_, _ = fmt.Fprintf(color.Output, "%d min (allowed %d to %d)\n", clamped, task.MinDuration, task.MaxDuration)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}
