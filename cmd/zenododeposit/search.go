// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"zenodo-deposit-cli/internal/zenodo"

	"github.com/spf13/cobra"
)

// newSearchCommand creates the `zenododeposit search` command.
func newSearchCommand(app *App) *cobra.Command {
	var opts zenodo.SearchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search your depositions",
		Long: `Search the authenticated user's depositions and print the matches as
JSON.

Examples:
  zenododeposit search --query "climate"
  zenododeposit search --query "climate" --status draft --size 50
  zenododeposit search --query "climate" --sort -mostrecent --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Elasticsearch query string (required)")
	cmd.Flags().IntVar(&opts.Size, "size", 10, "number of results per page")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "result page to fetch")
	cmd.Flags().StringVar(&opts.Sort, "sort", "mostrecent", "sort order (bestmatch, mostrecent, -mostrecent)")
	cmd.Flags().StringVar(&opts.Status, "status", "all", "filter by status (all, draft, published)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runSearch(cmd *cobra.Command, app *App, opts zenodo.SearchOptions) error {
	results, err := app.Client().Search(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to search depositions: %w", err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SubtitleStyle.Render(fmt.Sprintf("%d result(s)", len(results))))
	return app.printJSON(results)
}
