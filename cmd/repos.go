package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reposLicense string

var reposCmd = &cobra.Command{
	Use:   "repos [organization]",
	Short: "List an organization's public repositories",
	Example: `  orgrepos repos google
  orgrepos repos google --license apache-2.0`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := resolveOrg(args)
		if err != nil {
			return err
		}
		license := reposLicense
		if license == "" {
			license = appConfig.GitHub.License
		}

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()

		names, err := newOrgClient(org).PublicRepos(ctx, license)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	reposCmd.Flags().StringVar(&reposLicense, "license", "", "only list repositories with this license key, e.g. mit")
}
