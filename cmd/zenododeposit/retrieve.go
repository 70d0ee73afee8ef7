// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// newRetrieveCommand creates the `zenododeposit retrieve` command.
func newRetrieveCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieve <deposition-id>",
		Short: "Retrieve a deposition by id",
		Long: `Retrieve a single deposition and print it as JSON.

Examples:
  zenododeposit retrieve 123456
  zenododeposit --sandbox retrieve 123456`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd, app, args[0])
		},
	}

	return cmd
}

// parseDepositionID parses a positional deposition id argument.
func parseDepositionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid deposition id %q: expected a positive integer", arg)
	}
	return id, nil
}

func runRetrieve(cmd *cobra.Command, app *App, arg string) error {
	id, err := parseDepositionID(arg)
	if err != nil {
		return err
	}

	dep, err := app.Client().GetDeposition(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to retrieve deposition %d: %w", id, err)
	}

	return app.printJSON(dep)
}
