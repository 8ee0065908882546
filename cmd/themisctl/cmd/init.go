package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/themis/policyfile"
)

const sampleEnv = `# Themis server configuration
PROJECT_NAME=Themis
SERVER_PORT=8080
LOG_LEVEL=info

# Admin routes require the WAY-API-KEY header when set
ADMIN_API_KEY=change-me
ADMIN_AUTHN_REQUIRED=true
PUBLIC_AUTHN_REQUIRED=false

COMBINING_ALGORITHM=explicit-precedence
ENGINE_SQL_DATABASE=true
ENGINE_SQL_DATABASE_URL=sqlite://./.db/themis.sqlite

FETCHERS={"registry": {"sql_database_url": "sqlite://./.db/themis.sqlite"}, "passport": {"jwt_secret": "change-me-too", "requires_registry": true}}

BULK_CHECK_MAX_REQUESTS=100
BULK_CHECK_BATCH_SIZE=10
`

func newInitCmd() *cobra.Command {
	var (
		policyFile string
		force      bool
		sample     bool
		sampleFile string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter policy file",
		Long: `Write a default policy file that can be customized and pushed.

With --sample a starter .env server configuration is written as well.

Examples:
  themisctl init
  themisctl init --policy-file policies.yaml
  themisctl init --sample --sample-file .env.local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := refuseOverwrite(policyFile, force); err != nil {
				return err
			}
			if sample {
				if err := refuseOverwrite(sampleFile, force); err != nil {
					return err
				}
			}

			if err := policyfile.Write(policyFile, policyfile.DefaultPolicy()); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Generated policy file: %s\n", okFmt("✓"), policyFile)

			if sample {
				if err := os.WriteFile(sampleFile, []byte(sampleEnv), 0o600); err != nil {
					return fmt.Errorf("write sample configuration: %w", err)
				}
				fmt.Fprintf(out, "%s Generated sample configuration: %s\n", okFmt("✓"), sampleFile)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, stepFmt("Next steps:"))
			fmt.Fprintln(out, "1. Review and customize the policy file")
			fmt.Fprintln(out, "2. Start the Themis server")
			fmt.Fprintf(out, "3. Push the policy file: themisctl push %s\n", policyFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&policyFile, "policy-file", "policies.json", "Policy file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&sample, "sample", false, "Also write a starter server configuration")
	cmd.Flags().StringVar(&sampleFile, "sample-file", ".env", "Sample configuration path")
	return cmd
}

func refuseOverwrite(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}
