// Package cmd implements the themisctl CLI commands.
package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	infoFmt = color.New(color.FgYellow).SprintFunc()
	stepFmt = color.New(color.FgCyan, color.Bold).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
)

// NewRootCmd builds a fresh command tree, so tests never share flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "themisctl",
		Short: "Manage Themis policies",
		Long: `themisctl writes, validates and pushes Themis policy files.

Policy files may be JSON, JSONC (JSON with comments) or YAML, and hold
either one policy or a list of policies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInitCmd(),
		newValidateCmd(),
		newPushCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln(errFmt("Error:"), err)
		return err
	}
	return nil
}
