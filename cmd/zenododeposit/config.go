// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"zenodo-deposit-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `zenododeposit config` command group.
// Both subcommands run with credential validation disabled so a user can
// inspect settings while still setting them up.
func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved settings",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigPathCommand(app))

	return cmd
}

// newConfigShowCommand creates the `zenododeposit config show` command.
func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings with tokens masked",
		Long: `Show the effective settings section after file discovery and
environment overrides. Access token values are masked to their first
four characters.

Examples:
  zenododeposit config show
  zenododeposit --config ./alt-settings.toml config show`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipValidation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(app)
		},
	}
}

func runConfigShow(app *App) error {
	fmt.Fprintln(app.stdout, TitleStyle.Render("["+config.DefaultSectionName+"]"))
	for _, key := range slices.Sorted(maps.Keys(app.section)) {
		value := app.section[key]
		if strings.Contains(key, "TOKEN") {
			value = config.MaskToken(value)
		}
		fmt.Fprintf(app.stdout, "%s = %q\n", key, value)
	}

	// Point out an unusable credential for the selected mode so the user
	// sees the problem in the same place they came to inspect it.
	if err := config.ValidateCredentials(app.section, app.sandbox); err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+err.Error())
	}
	return nil
}

// newConfigPathCommand creates the `zenododeposit config path` command.
func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show which settings file is in effect",
		Long: `Show the settings file selected by discovery. Prints the built-in
defaults marker when no file exists at any discovery location.

Examples:
  zenododeposit config path`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipValidation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return runConfigPath(app, cfgFile)
		},
	}
}

func runConfigPath(app *App, cfgFile string) error {
	src := app.Resolver.Discover(cfgFile)
	switch {
	case src.IsBuiltin():
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("built-in defaults (no settings file found)"))
	case src.Explicit:
		// Explicit paths are never existence-checked at discovery time,
		// so flag a missing file here instead of printing it as if it
		// were in effect.
		marker := " (from --config)"
		if _, err := os.Stat(src.Path); err != nil {
			marker = " (from --config, " + ErrorStyle.Render("not found") + ")"
		}
		fmt.Fprintln(app.stdout, src.Path+marker)
	default:
		fmt.Fprintln(app.stdout, src.Path)
	}
	return nil
}
