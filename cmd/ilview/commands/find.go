package commands

import "github.com/spf13/cobra"

func (c *CLI) newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [dir]",
		Short: "List the assemblies below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			}
			return c.app.Find(cmd.Context(), dir)
		},
	}
}
