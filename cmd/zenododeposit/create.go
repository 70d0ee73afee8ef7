// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"zenodo-deposit-cli/internal/metadata"

	"github.com/spf13/cobra"
)

// newCreateCommand creates the `zenododeposit create` command.
func newCreateCommand(app *App) *cobra.Command {
	var metadataFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty deposition",
		Long: `Create a new, unpublished deposition.

The deposition is created without files. If a metadata file is given it
is attached at creation time; otherwise the deposition starts empty and
metadata can be set later with update-metadata.

Examples:
  zenododeposit create
  zenododeposit --sandbox create -m metadata.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, metadataFile)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "TOML metadata file to attach at creation")

	return cmd
}

func runCreate(cmd *cobra.Command, app *App, metadataFile string) error {
	var md map[string]any
	if metadataFile != "" {
		var err error
		md, err = metadata.FromTOML(metadataFile, nil)
		if err != nil {
			return err
		}
	}

	dep, err := app.Client().CreateDeposition(cmd.Context(), md)
	if err != nil {
		return fmt.Errorf("failed to create deposition: %w", err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("Created deposition %d", dep.ID)))
	return app.printJSON(dep)
}
