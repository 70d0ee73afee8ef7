// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Resolver locates a settings source, extracts sections from it, and
	// overlays environment variables onto the result. It owns an explicit
	// cache keyed by (source id, section name) so repeated resolutions in
	// one process skip redundant file parsing. The cache holds pre-overlay
	// section copies only; the environment overlay is recomputed on every
	// access so in-process environment changes are always observed.
	//
	// A Resolver is safe for concurrent readers. There is no eviction;
	// cache lifetime is the resolver's lifetime.
	Resolver struct {
		mu    sync.RWMutex
		cache map[cacheKey]Section

		lookupEnv func(string) (string, bool)
		homeDir   func() (string, error)
	}

	// ResolverOption configures a Resolver during construction.
	ResolverOption func(*Resolver)

	cacheKey struct {
		source  string
		section string
	}
)

// WithLookupEnv replaces the process environment with a custom lookup.
// Tests use this to supply a synthetic environment without mutating
// real process state.
func WithLookupEnv(lookup func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = lookup
	}
}

// WithEnviron is a convenience wrapper around WithLookupEnv for a fixed
// environment map.
func WithEnviron(env map[string]string) ResolverOption {
	return WithLookupEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
}

// WithHomeDir overrides home directory lookup, primarily for tests where
// os.UserHomeDir doesn't reliably respect the HOME environment variable
// on all platforms.
func WithHomeDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.homeDir = func() (string, error) { return dir, nil }
	}
}

// NewResolver creates a Resolver with an empty cache. Defaults:
// environment from os.LookupEnv, home directory from os.UserHomeDir.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:     make(map[cacheKey]Section),
		lookupEnv: os.LookupEnv,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover returns the settings source for this invocation: the explicit
// path when given (existence is only checked at read time), else the first
// of ./.zenodo-deposit-settings.toml and ~/.zenodo-deposit-settings.toml
// that exists, else the built-in default. Pure apart from the existence
// checks; short-circuits on the first match.
func (r *Resolver) Discover(explicitPath string) Source {
	if explicitPath != "" {
		return Source{Path: explicitPath, Explicit: true}
	}

	if fileExists(SettingsFileName) {
		return Source{Path: SettingsFileName}
	}

	if home, err := r.homeDir(); err == nil {
		candidate := filepath.Join(home, SettingsFileName)
		if fileExists(candidate) {
			return Source{Path: candidate}
		}
	}

	slog.Debug("no settings file found, using built-in defaults")
	return Source{}
}

// ReadDocument reads the full settings document for a source. A builtin
// source yields a single "zenodo" section holding a fresh copy of the
// defaults. File sources are parsed as TOML with string-valued sections;
// a vanished file surfaces as NotFoundError (discovery and read are not
// atomic, and explicit paths are never pre-checked), invalid content as
// ParseError.
func (r *Resolver) ReadDocument(src Source) (Document, error) {
	if src.IsBuiltin() {
		return Document{DefaultSectionName: DefaultZenodoSection()}, nil
	}

	slog.Debug("reading settings file", "path", src.Path)

	data, err := os.ReadFile(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: src.Path}
		}
		return nil, err
	}

	var raw map[string]map[string]string
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: src.Path, Cause: err}
	}

	doc := make(Document, len(raw))
	for name, sec := range raw {
		doc[name] = Section(sec)
	}
	return doc, nil
}

// Section resolves the named section from the discovered source and
// overlays the environment onto it. The pre-overlay section copy is
// cached by (source id, section name); the overlay itself is applied to
// a fresh copy on every call and is never cached. Environment variables
// can only override keys already present in the section, never introduce
// new ones.
func (r *Resolver) Section(explicitPath, section string) (Section, error) {
	src := r.Discover(explicitPath)
	key := cacheKey{source: src.ID(), section: section}

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()

	var sec Section
	if ok {
		sec = cached.Clone()
	} else {
		doc, err := r.ReadDocument(src)
		if err != nil {
			return nil, err
		}

		raw, present := doc[section]
		if !present {
			return nil, &MissingSectionError{Section: section, Source: src.ID()}
		}

		// Two independent copies: one to cache, one to hand out. The
		// parsed document (or the built-in default) is never mutated.
		sec = raw.Clone()
		r.mu.Lock()
		r.cache[key] = sec.Clone()
		r.mu.Unlock()
	}

	for k := range sec {
		if v, found := r.lookupEnv(k); found {
			slog.Debug("environment overrides settings key", "key", k)
			sec[k] = v
		}
	}

	return sec, nil
}

// ZenodoSection resolves the standard "zenodo" section. This is the one
// "get configuration" entry point the CLI calls once per invocation.
func (r *Resolver) ZenodoSection(explicitPath string) (Section, error) {
	return r.Section(explicitPath, DefaultSectionName)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
