// ABOUTME: The schedule subcommand
// ABOUTME: Prints which species the configured schedule selects for a date
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newScheduleCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [YYYY-MM-DD]",
		Short: "Show the species active on a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now()
			if len(args) == 1 {
				d, err := time.ParseInLocation(dateLayout, args[0], time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
				date = d
			}

			sched, err := o.settings.Playback.BuildSchedule()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", date.Format(dateLayout), sched.Resolve(date))
			for _, e := range sched {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
}
