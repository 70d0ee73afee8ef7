// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"zenodo-deposit-cli/internal/config"
	"zenodo-deposit-cli/internal/issue"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// annotationSkipValidation marks commands that must run without a valid
// credential, e.g. the config inspection commands a user needs while
// still setting up.
const annotationSkipValidation = "zenododeposit.skip_validation"

// NewRootCommand builds the command tree around the given App.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zenododeposit",
		Short: "Deposit and manage datasets on Zenodo",
		Long: TitleStyle.Render("zenododeposit") + SubtitleStyle.Render(" - deposit and manage datasets on Zenodo") + `

zenododeposit creates, uploads to, publishes, tags, and searches
depositions on Zenodo or its sandbox.

Settings are read from a TOML file, discovered in order:
  1. --config <path>
  2. ./` + config.SettingsFileName + `
  3. ~/` + config.SettingsFileName + `

Environment variables named after settings keys override file values
(in practice ` + config.KeyAccessToken + ` and ` + config.KeySandboxAccessToken + `).

` + SubtitleStyle.Render("Examples:") + `
  zenododeposit --sandbox create
  zenododeposit upload -m metadata.toml --publish data.csv
  zenododeposit search --query "climate"
  zenododeposit config show`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initInvocation(app, cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.Bool("sandbox", false, "target the Zenodo sandbox environment")
	pf.Bool("production", false, "target the production environment (the default)")
	pf.String("config", "", "path to the settings file (default is discovered)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolP("verbose", "v", false, "enable verbose output (forces debug logging)")
	rootCmd.MarkFlagsMutuallyExclusive("sandbox", "production")

	rootCmd.AddCommand(newCreateCommand(app))
	rootCmd.AddCommand(newRetrieveCommand(app))
	rootCmd.AddCommand(newUploadCommand(app))
	rootCmd.AddCommand(newPublishCommand(app))
	rootCmd.AddCommand(newDeleteCommand(app))
	rootCmd.AddCommand(newUpdateMetadataCommand(app))
	rootCmd.AddCommand(newTagCommand(app))
	rootCmd.AddCommand(newSearchCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// initInvocation resolves flags and environment into per-invocation
// state, installs logging, loads the settings section, and validates the
// selected credential before any network command may run.
func initInvocation(app *App, cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("ZENODO_DEPOSIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlag("sandbox", cmd.Flags().Lookup("sandbox")); err != nil {
		return err
	}
	if err := v.BindPFlag("log-level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	setupLogging(app, v.GetString("log-level"), verbose)

	app.sandbox = v.GetBool("sandbox")
	if cmd.Flags().Changed("production") {
		app.sandbox = false
	}

	slog.Debug("invocation configured", "sandbox", app.sandbox)

	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	section, err := app.Resolver.ZenodoSection(cfgFile)
	if err != nil {
		printGuidance(app, err)
		if cmd.Annotations[annotationSkipValidation] == "true" {
			// Inspection commands still run on an empty section so the
			// user can debug the failure they were just shown.
			app.section = config.Section{}
			return nil
		}
		return &ExitError{Code: 2, Err: issue.NewErrorContext().
			WithOperation("load settings").
			WithResource(cfgFile).
			WithSuggestion("Run 'zenododeposit config path' to see where settings are read from").
			Wrap(err).
			BuildError()}
	}
	for key, value := range section {
		slog.Debug("resolved settings key", "key", key, "value", config.MaskToken(value))
	}
	app.section = section

	if cmd.Annotations[annotationSkipValidation] == "true" {
		return nil
	}

	if err := config.ValidateCredentials(section, app.sandbox); err != nil {
		printGuidance(app, err)
		return &ExitError{Code: 2, Err: issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Set " + config.CredentialKey(app.sandbox) + " in the settings file or the environment").
			Wrap(err).
			BuildError()}
	}

	return nil
}

// setupLogging installs a charmbracelet logger as the slog default so
// internal packages log through one stderr handler. Verbose mode forces
// debug level regardless of --log-level.
func setupLogging(app *App, level string, verbose bool) {
	logger := charmlog.NewWithOptions(app.stderr, charmlog.Options{
		Prefix: "zenododeposit",
	})
	if lvl, err := charmlog.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// printGuidance renders the markdown help matching a setup failure.
// Rendering errors are ignored: guidance is best-effort decoration on
// top of the real error.
func printGuidance(app *App, err error) {
	var id issue.Id
	switch {
	case errors.Is(err, config.ErrSettingsNotFound):
		id = issue.SettingsNotFoundId
	case errors.Is(err, config.ErrSettingsParse):
		id = issue.SettingsParseErrorId
	case errors.Is(err, config.ErrInvalidCredentials):
		id = issue.TokenNotConfiguredId
	default:
		return
	}

	if rendered, rerr := issue.Get(id).Render("dark"); rerr == nil {
		fmt.Fprintln(app.stderr, rendered)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the CLI. This is called by
// main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
