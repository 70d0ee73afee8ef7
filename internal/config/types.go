// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
)

const (
	// SettingsFileName is the fixed settings file name searched for in the
	// working directory and the user's home directory.
	SettingsFileName = ".zenodo-deposit-settings.toml"

	// DefaultSectionName is the section read when callers don't ask for
	// a specific one.
	DefaultSectionName = "zenodo"

	// KeyAccessToken holds the production API token.
	KeyAccessToken = "ZENODO_ACCESS_TOKEN"
	// KeySandboxAccessToken holds the sandbox API token.
	KeySandboxAccessToken = "ZENODO_SANDBOX_ACCESS_TOKEN"

	// PlaceholderToken is the sentinel value the built-in defaults carry for
	// both token keys. Validation must never accept it as a credential.
	PlaceholderToken = "Change me"

	// builtinSourceID identifies the built-in default source in cache keys
	// and error messages. Angle brackets keep it from colliding with a
	// real relative path.
	builtinSourceID = "<builtin>"
)

var (
	// ErrSettingsNotFound is the sentinel error wrapped by NotFoundError.
	ErrSettingsNotFound = errors.New("settings file not found")
	// ErrSettingsParse is the sentinel error wrapped by ParseError.
	ErrSettingsParse = errors.New("settings file is not valid TOML")
	// ErrMissingSection is the sentinel error wrapped by MissingSectionError.
	ErrMissingSection = errors.New("section not found in settings")
	// ErrInvalidCredentials is the sentinel error wrapped by ValidationError.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Section is one named group of string settings from a source. Every
	// accessor in this package returns an independently owned copy, so
	// callers may mutate the result freely.
	Section map[string]string

	// Document maps section names to sections, mirroring the top-level
	// tables of the settings file.
	Document map[string]Section

	// Source identifies where settings come from. A zero Path means the
	// built-in default section. Immutable once discovered.
	Source struct {
		// Path is the settings file path, or "" for the built-in default.
		Path string
		// Explicit is true when the path was supplied by the caller rather
		// than discovered, in which case no existence check has happened yet.
		Explicit bool
	}

	// NotFoundError is returned when a settings file vanished (or never
	// existed) between discovery and read. It wraps ErrSettingsNotFound
	// for errors.Is() compatibility.
	NotFoundError struct {
		Path string
	}

	// ParseError is returned when a settings file is not valid TOML.
	// It wraps ErrSettingsParse for errors.Is() compatibility and keeps
	// the decoder error as Cause.
	ParseError struct {
		Path  string
		Cause error
	}

	// MissingSectionError is returned when the requested section is absent
	// from the parsed document. It wraps ErrMissingSection for errors.Is()
	// compatibility.
	MissingSectionError struct {
		Section string
		Source  string
	}

	// ValidationError is returned when the mode-selected token is missing,
	// blank, or still the placeholder. It names the key and mode but never
	// carries the token value. It wraps ErrInvalidCredentials for
	// errors.Is() compatibility.
	ValidationError struct {
		Key     string
		Sandbox bool
	}
)

// Clone returns an independently owned copy of the section.
// A nil section clones to an empty, non-nil section so callers can
// always mutate the result.
func (s Section) Clone() Section {
	out := make(Section, len(s))
	maps.Copy(out, s)
	return out
}

// IsBuiltin reports whether the source is the built-in default section
// rather than a file.
func (s Source) IsBuiltin() bool {
	return s.Path == ""
}

// ID returns a stable identifier for cache keys and messages.
func (s Source) ID() string {
	if s.IsBuiltin() {
		return builtinSourceID
	}
	return s.Path
}

// DefaultZenodoSection returns a fresh copy of the built-in defaults.
// Each call allocates a new map; the defaults themselves are never
// handed out, so caller mutation can't leak into later resolutions.
func DefaultZenodoSection() Section {
	return Section{
		KeyAccessToken:        PlaceholderToken,
		KeySandboxAccessToken: PlaceholderToken,
	}
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("settings file not found: %s", e.Path)
}

// Unwrap returns ErrSettingsNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrSettingsNotFound }

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("settings file %s is not valid TOML: %v", e.Path, e.Cause)
}

// Unwrap returns the wrapped errors for errors.Is()/errors.As().
// Both the sentinel and the decoder cause are exposed.
func (e *ParseError) Unwrap() []error { return []error{ErrSettingsParse, e.Cause} }

// Error implements the error interface for MissingSectionError.
func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("section %q not found in %s", e.Section, e.Source)
}

// Unwrap returns ErrMissingSection for errors.Is() compatibility.
func (e *MissingSectionError) Unwrap() error { return ErrMissingSection }

// Mode returns the human-readable environment name for the failed key.
func (e *ValidationError) Mode() string {
	if e.Sandbox {
		return "sandbox"
	}
	return "production"
}

// Error implements the error interface for ValidationError. The token
// value is deliberately absent from the message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is not set, or is blank or the %q placeholder (%s mode)",
		e.Key, PlaceholderToken, e.Mode())
}

// Unwrap returns ErrInvalidCredentials for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrInvalidCredentials }
