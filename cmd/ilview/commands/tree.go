package commands

import (
	"github.com/spf13/cobra"

	"go.trai.ch/ilview/internal/app"
)

func (c *CLI) newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <assembly>...",
		Short: "Print the member hierarchy of assemblies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depth, _ := cmd.Flags().GetInt("depth")
			return c.app.Tree(cmd.Context(), options(cmd), args, app.TreeOptions{Depth: depth})
		},
	}
	cmd.Flags().IntP("depth", "d", 0, "Levels below each assembly to print (0 prints everything)")
	return cmd
}
