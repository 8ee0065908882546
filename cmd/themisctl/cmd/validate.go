package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/themis/policyfile"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <policy-file>",
		Short: "Validate a policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			policies, err := policyfile.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Policy file %s is valid\n", okFmt("✓"), args[0])
			for _, p := range policies {
				fmt.Fprintf(out, "  %s: %d rules, default %s\n", p.Name, len(p.Rules), p.DefaultEffect)
			}
			return nil
		},
	}
}
