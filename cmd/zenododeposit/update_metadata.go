// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"zenodo-deposit-cli/internal/metadata"

	"github.com/spf13/cobra"
)

// newUpdateMetadataCommand creates the `zenododeposit update-metadata` command.
func newUpdateMetadataCommand(app *App) *cobra.Command {
	var (
		metadataFile string
		vars         []string
	)

	cmd := &cobra.Command{
		Use:   "update-metadata <deposition-id>",
		Short: "Replace a deposition's metadata from a TOML file",
		Long: `Replace the metadata of an existing deposition with the contents of a
TOML metadata file. Variables referenced as ${NAME} are substituted from
--variable flags.

Examples:
  zenododeposit update-metadata 123456 -m metadata.toml
  zenododeposit update-metadata 123456 -m metadata.toml --variable version:2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdateMetadata(cmd, app, args[0], metadataFile, vars)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "TOML metadata file (required)")
	cmd.Flags().StringArrayVar(&vars, "variable", nil, "metadata variable as name:value (repeatable)")
	_ = cmd.MarkFlagRequired("metadata")

	return cmd
}

func runUpdateMetadata(cmd *cobra.Command, app *App, arg, metadataFile string, rawVars []string) error {
	id, err := parseDepositionID(arg)
	if err != nil {
		return err
	}

	vars, err := parseVars(rawVars)
	if err != nil {
		return err
	}

	md, err := metadata.FromTOML(metadataFile, vars)
	if err != nil {
		return err
	}
	if err := metadata.Validate(md); err != nil {
		return err
	}

	dep, err := app.Client().UpdateMetadata(cmd.Context(), id, md)
	if err != nil {
		return fmt.Errorf("failed to update metadata for deposition %d: %w", id, err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("Updated metadata for deposition %d", dep.ID)))
	return app.printJSON(dep)
}
