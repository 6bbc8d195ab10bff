package commands

import "github.com/spf13/cobra"

func (c *CLI) newDecompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompile <assembly> [member...]",
		Short: "Print the code of an assembly or one of its members",
		Long: "Print the code of an assembly or one of its members.\n\n" +
			"Members are addressed by display name, one argument per level, for example\n" +
			"  ilview decompile Lib.dll Demo Widget Render\n" +
			"A symbol id such as M:Demo.Widget.Render also matches.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Decompile(cmd.Context(), options(cmd), args[0], args[1:])
		},
	}
}
