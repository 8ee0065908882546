package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/themis/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the themisctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Themis v%s\n", config.Version)
		},
	}
}
