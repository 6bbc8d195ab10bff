package commands

import (
	"github.com/spf13/cobra"

	"go.trai.ch/ilview/internal/app"
)

func (c *CLI) newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [assembly...]",
		Short: "Explore assemblies in an interactive shell",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts app.BrowseOptions
			if cmd.Flags().Changed("watch") {
				watch, _ := cmd.Flags().GetBool("watch")
				opts.Watch = &watch
			}
			return c.app.Browse(cmd.Context(), options(cmd), opts, args)
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Refresh when a loaded assembly changes on disk")
	return cmd
}
