package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/aqtcache/internal/app"
)

func (c *CLI) newPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete partitions of versions other than the configured one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			deleted, err := c.app.Purge(cmd.Context(), app.PurgeOptions{
				ConfigOptions: configOptions(cmd),
				All:           all,
			})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d partition(s)\n", len(deleted))
			return err
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Also delete the partitions of the configured version")

	return cmd
}
