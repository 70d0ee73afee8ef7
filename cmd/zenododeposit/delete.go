// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDeleteCommand creates the `zenododeposit delete` command.
func newDeleteCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <deposition-id>",
		Short: "Delete an unpublished deposition",
		Long: `Delete a draft deposition. Only unpublished depositions can be
deleted; the server rejects the request for published ones.

Examples:
  zenododeposit delete 123456`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, app, args[0])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, app *App, arg string) error {
	id, err := parseDepositionID(arg)
	if err != nil {
		return err
	}

	if err := app.Client().DeleteDeposition(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete deposition %d: %w", id, err)
	}

	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("Deleted deposition %d", id)))
	return nil
}
