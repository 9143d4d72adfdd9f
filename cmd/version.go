// ABOUTME: The version subcommand
// ABOUTME: Prints product and version information
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/nightchorus/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nManufacturer: %s\n", version.String(), version.Manufacturer)
		},
	}
}
