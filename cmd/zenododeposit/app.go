// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"zenodo-deposit-cli/internal/config"
	"zenodo-deposit-cli/internal/zenodo"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: all Cobra command handlers receive an App
	// reference and reach the configuration resolver and the API client
	// through it.
	App struct {
		Resolver  *config.Resolver
		NewClient ClientFactory

		stdout io.Writer
		stderr io.Writer

		// Per-invocation state, set by the root command before any
		// subcommand runs.
		section config.Section
		sandbox bool
	}

	// ClientFactory builds an API client for the given token and
	// environment. Tests substitute one pointed at an httptest server.
	ClientFactory func(token string, sandbox bool) *zenodo.Client

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Resolver  *config.Resolver
		NewClient ClientFactory
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp builds the App, substituting production defaults for any nil
// dependency.
func NewApp(deps Dependencies) *App {
	app := &App{
		Resolver:  deps.Resolver,
		NewClient: deps.NewClient,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Resolver == nil {
		app.Resolver = config.NewResolver()
	}
	if app.NewClient == nil {
		app.NewClient = func(token string, sandbox bool) *zenodo.Client {
			return zenodo.NewClient(token, sandbox,
				zenodo.WithUserAgent("zenododeposit/"+Version))
		}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// Client builds an API client for the validated invocation settings.
func (a *App) Client() *zenodo.Client {
	return a.NewClient(config.AccessToken(a.section, a.sandbox), a.sandbox)
}

// printJSON writes v to stdout as a single JSON document, the machine
// readable output contract every network command shares.
func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
