// SPDX-License-Identifier: MPL-2.0

// Package zenodo is a thin client for the Zenodo deposit API.
//
// Every operation maps to exactly one HTTP call (plus one extra fetch
// when uploading from a remote URL). There are no retries, no pagination
// loops, and no client-side state: failures are configuration or user
// errors and surface immediately as *APIError or wrapped transport
// errors.
package zenodo
