// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context: structured errors
// with operation, resource, and fix suggestions, plus rendered markdown
// guidance for the setup problems every new user hits.
package issue
