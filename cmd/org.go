package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"orgrepos/internal/utils"
)

var orgField string

var orgCmd = &cobra.Command{
	Use:   "org [organization]",
	Short: "Print an organization document",
	Example: `  orgrepos org google
  orgrepos org google --field repos_url`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := resolveOrg(args)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()

		doc, err := newOrgClient(org).Org(ctx)
		if err != nil {
			return err
		}

		var value any = doc
		if orgField != "" {
			value, err = utils.AccessNestedMap(doc, utils.SplitPath(orgField))
			if err != nil {
				return err
			}
		}
		return printValue(cmd.OutOrStdout(), value)
	},
}

func init() {
	orgCmd.Flags().StringVar(&orgField, "field", "", "dotted path of a single field to print, e.g. repos_url")
}

// printValue writes strings verbatim and everything else as indented JSON.
func printValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
