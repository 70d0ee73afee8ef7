// SPDX-License-Identifier: MPL-2.0

package config

import "strings"

// CredentialKey returns the token key selected by the mode flag:
// KeySandboxAccessToken when sandbox is true, KeyAccessToken otherwise.
func CredentialKey(sandbox bool) string {
	if sandbox {
		return KeySandboxAccessToken
	}
	return KeyAccessToken
}

// ValidateCredentials checks that the mode-selected token is present,
// non-blank after trimming, and not the built-in placeholder. Only the
// selected key is inspected; the other mode's token may be invalid or
// absent without effect. The section is not modified.
func ValidateCredentials(sec Section, sandbox bool) error {
	key := CredentialKey(sandbox)
	token := strings.TrimSpace(sec[key])
	if token == "" || token == PlaceholderToken {
		return &ValidationError{Key: key, Sandbox: sandbox}
	}
	return nil
}

// AccessToken returns the mode-selected token from a resolved section.
// Callers are expected to have run ValidateCredentials first.
func AccessToken(sec Section, sandbox bool) string {
	return sec[CredentialKey(sandbox)]
}

// MaskToken returns a log-safe preview of a token: the first four
// characters followed by a star per hidden character. Short tokens are
// fully masked.
func MaskToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}
	return token[:visible] + strings.Repeat("*", len(token)-visible)
}
