// SPDX-License-Identifier: MPL-2.0

// Package config resolves and validates the Zenodo deposit settings.
//
// Settings live in a TOML file named .zenodo-deposit-settings.toml,
// discovered in order: an explicit path, the current working directory,
// then the user's home directory. When no file exists, a built-in
// default section with placeholder tokens is used. Environment variables
// override file-provided keys, and credential validation rejects missing,
// blank, and placeholder tokens before any network operation runs.
package config
