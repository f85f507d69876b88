package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ragtel version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ragtel %s\n", a.version)
		},
	}
}
