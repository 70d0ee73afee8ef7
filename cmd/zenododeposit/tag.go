// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"zenodo-deposit-cli/internal/metadata"

	"github.com/spf13/cobra"
)

// newTagCommand creates the `zenododeposit tag` command.
func newTagCommand(app *App) *cobra.Command {
	var keywords []string

	cmd := &cobra.Command{
		Use:   "tag <deposition-id>",
		Short: "Add keywords to a deposition",
		Long: `Add keywords to an existing deposition. Keywords already present are
kept; the new ones are appended without duplicates.

Examples:
  zenododeposit tag 123456 -k climate
  zenododeposit tag 123456 -k climate,co2 -k emissions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(cmd, app, args[0], metadata.SplitKeywords(keywords))
		},
	}

	cmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "keyword to add (repeatable, comma-separated values accepted)")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func runTag(cmd *cobra.Command, app *App, arg string, keywords []string) error {
	id, err := parseDepositionID(arg)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords given")
	}

	client := app.Client()
	dep, err := client.GetDeposition(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to retrieve deposition %d: %w", id, err)
	}

	md := dep.Metadata
	if md == nil {
		md = map[string]any{}
	}
	md["keywords"] = metadata.UnionKeywords(md["keywords"], keywords)

	updated, err := client.UpdateMetadata(cmd.Context(), id, md)
	if err != nil {
		return fmt.Errorf("failed to tag deposition %d: %w", id, err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("Tagged deposition %d", updated.ID)))
	return app.printJSON(updated)
}
