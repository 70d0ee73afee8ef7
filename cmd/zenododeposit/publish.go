// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPublishCommand creates the `zenododeposit publish` command.
func newPublishCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <deposition-id>",
		Short: "Publish a deposition",
		Long: `Publish an existing draft deposition. Publishing is permanent: a
published deposition cannot be deleted, only amended through new
versions.

Examples:
  zenododeposit publish 123456`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, app, args[0])
		},
	}

	return cmd
}

func runPublish(cmd *cobra.Command, app *App, arg string) error {
	id, err := parseDepositionID(arg)
	if err != nil {
		return err
	}

	dep, err := app.Client().PublishDeposition(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to publish deposition %d: %w", id, err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("Published deposition %d (DOI %s)", dep.ID, dep.DOI)))
	return app.printJSON(dep)
}
