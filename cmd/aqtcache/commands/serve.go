package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/aqtcache/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the caching proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			noWatch, _ := cmd.Flags().GetBool("no-watch")
			verbose, _ := cmd.Flags().GetBool("verbose")
			json, _ := cmd.Flags().GetBool("json")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				ConfigOptions: configOptions(cmd),
				Listen:        listen,
				Watch:         !noWatch,
				Verbose:       verbose,
				JSON:          json,
			})
		},
	}

	cmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides the config file)")
	cmd.Flags().Bool("no-watch", false, "Do not reload the config file when it changes")
	cmd.Flags().BoolP("verbose", "v", false, "Log debug output, including one line per span")
	cmd.Flags().Bool("json", false, "Log JSON lines")

	return cmd
}
