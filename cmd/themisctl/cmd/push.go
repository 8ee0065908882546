package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/themis/client"
	"github.com/dev-mohitbeniwal/themis/policyfile"
)

var errAborted = errors.New("aborted")

func newPushCmd() *cobra.Command {
	var (
		overwrite bool
		yes       bool
		endpoint  string
		apiKey    string
	)
	cmd := &cobra.Command{
		Use:   "push <policy-file>",
		Short: "Push a policy file to a Themis server",
		Long: `Create every policy in the file on the server.

--overwrite first deletes every policy already on the server. This is
destructive, so it asks for confirmation unless --yes is given.

Environment variables:
  WAY_API_KEY  Admin API key when --api-key is not given

Examples:
  themisctl push policies.json
  themisctl push policies.yaml --endpoint https://themis.internal:8080
  themisctl push policies.json --overwrite --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			policies, err := policyfile.Load(args[0])
			if err != nil {
				return err
			}

			if overwrite && !yes {
				fmt.Fprint(out, infoFmt("This deletes every existing policy on the server. Continue? [y/N] "))
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					return errAborted
				}
			}

			c := client.New(endpoint, apiKey)
			ctx := cmd.Context()

			if overwrite {
				existing, err := c.ListPolicies(ctx)
				if err != nil {
					return fmt.Errorf("list policies: %w", err)
				}
				for _, p := range existing {
					if _, err := c.DeletePolicy(ctx, p.Name); err != nil {
						return fmt.Errorf("delete policy %s: %w", p.Name, err)
					}
					fmt.Fprintf(out, "%s Deleted %s\n", infoFmt("-"), p.Name)
				}
			}

			for _, p := range policies {
				created, err := c.CreatePolicy(ctx, p)
				if err != nil {
					return fmt.Errorf("create policy %s: %w", p.Name, err)
				}
				fmt.Fprintf(out, "%s Created %s\n", okFmt("✓"), created.Name)
			}
			fmt.Fprintf(out, "Policy file %s pushed to %s\n", args[0], endpointOrDefault(endpoint))
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Delete every existing policy before pushing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the overwrite confirmation")
	cmd.Flags().StringVar(&endpoint, "endpoint", client.DefaultEndpoint, "Themis server endpoint")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Admin API key (env: WAY_API_KEY)")
	return cmd
}

func endpointOrDefault(endpoint string) string {
	if endpoint == "" {
		return client.DefaultEndpoint
	}
	return endpoint
}
