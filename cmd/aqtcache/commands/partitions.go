package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newPartitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partitions",
		Short: "List the cache partitions in storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parts, err := c.app.Partitions(cmd.Context(), configOptions(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(parts) == 0 {
				_, _ = fmt.Fprintln(out, "no partitions")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tENTRIES\tCURRENT")
			for _, p := range parts {
				current := ""
				if p.Current {
					current = "*"
				}
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.Entries, current)
			}
			return w.Flush()
		},
	}
}
