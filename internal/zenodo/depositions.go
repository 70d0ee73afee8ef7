// SPDX-License-Identifier: MPL-2.0

package zenodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

type (
	// Deposition is a Zenodo deposition as returned by the deposit API.
	Deposition struct {
		ID        int64            `json:"id"`
		Title     string           `json:"title"`
		State     string           `json:"state"`
		Submitted bool             `json:"submitted"`
		Created   string           `json:"created"` // ISO 8601 timestamp
		Modified  string           `json:"modified"`
		DOI       string           `json:"doi,omitempty"`
		Metadata  map[string]any   `json:"metadata,omitempty"`
		Links     DepositionLinks  `json:"links"`
		Files     []DepositionFile `json:"files,omitempty"`
	}

	// DepositionLinks are the hypermedia links of a deposition. Bucket is
	// the upload target for files.
	DepositionLinks struct {
		Self    string `json:"self,omitempty"`
		HTML    string `json:"html,omitempty"`
		Bucket  string `json:"bucket,omitempty"`
		Publish string `json:"publish,omitempty"`
		Record  string `json:"record_html,omitempty"`
	}

	// DepositionFile is one file stored in a deposition's bucket.
	DepositionFile struct {
		Key      string `json:"key"`
		Size     int64  `json:"size"`
		Checksum string `json:"checksum"`
	}

	// SearchOptions are the query parameters of the deposition list
	// endpoint. Zero values fall back to the API defaults.
	SearchOptions struct {
		Query  string
		Size   int
		Page   int
		Sort   string // e.g. "bestmatch", "mostrecent"
		Status string // "draft", "published", or "all"
	}
)

// CreateDeposition creates a new deposition, empty or with the given
// metadata. The API answers 201 with the deposition, including the bucket
// link used by file uploads.
func (c *Client) CreateDeposition(ctx context.Context, metadata map[string]any) (*Deposition, error) {
	payload := map[string]any{}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding deposition: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/deposit/depositions",
		"application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating deposition: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("creating deposition: %w", err)
	}

	var dep Deposition
	if err := decodeInto(resp, &dep); err != nil {
		return nil, fmt.Errorf("creating deposition: decoding response: %w", err)
	}
	return &dep, nil
}

// GetDeposition fetches a deposition by id.
func (c *Client) GetDeposition(ctx context.Context, id int64) (*Deposition, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.depositionURL(id), "", nil)
	if err != nil {
		return nil, fmt.Errorf("retrieving deposition %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("retrieving deposition %d: %w", id, err)
	}

	var dep Deposition
	if err := decodeInto(resp, &dep); err != nil {
		return nil, fmt.Errorf("retrieving deposition %d: decoding response: %w", id, err)
	}
	return &dep, nil
}

// UpdateMetadata replaces a deposition's metadata. The same endpoint
// serves both "add" and "update"; Zenodo has no partial-metadata call.
func (c *Client) UpdateMetadata(ctx context.Context, id int64, metadata map[string]any) (*Deposition, error) {
	body, err := json.Marshal(map[string]any{"metadata": metadata})
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPut, c.depositionURL(id),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("updating metadata for deposition %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("updating metadata for deposition %d: %w", id, err)
	}

	var dep Deposition
	if err := decodeInto(resp, &dep); err != nil {
		return nil, fmt.Errorf("updating metadata for deposition %d: decoding response: %w", id, err)
	}
	return &dep, nil
}

// PublishDeposition publishes a draft deposition. Publishing is
// irreversible: published depositions can no longer be deleted.
func (c *Client) PublishDeposition(ctx context.Context, id int64) (*Deposition, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.depositionURL(id)+"/actions/publish", "", nil)
	if err != nil {
		return nil, fmt.Errorf("publishing deposition %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("publishing deposition %d: %w", id, err)
	}

	var dep Deposition
	if err := decodeInto(resp, &dep); err != nil {
		return nil, fmt.Errorf("publishing deposition %d: decoding response: %w", id, err)
	}
	return &dep, nil
}

// DeleteDeposition deletes a draft deposition. The API rejects deletion
// of published depositions; that failure surfaces as an *APIError.
func (c *Client) DeleteDeposition(ctx context.Context, id int64) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, c.depositionURL(id), "", nil)
	if err != nil {
		return fmt.Errorf("deleting deposition %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("deleting deposition %d: %w", id, err)
	}
	return nil
}

// Search lists the user's depositions matching the query. A single page
// is fetched per call; pagination stays under caller control via
// SearchOptions.Page.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]Deposition, error) {
	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Size > 0 {
		params.Set("size", strconv.Itoa(opts.Size))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Status != "" && opts.Status != "all" {
		params.Set("status", opts.Status)
	}

	reqURL := c.baseURL + "/deposit/depositions"
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	resp, err := c.doRequest(ctx, http.MethodGet, reqURL, "", nil)
	if err != nil {
		return nil, fmt.Errorf("searching depositions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("searching depositions: %w", err)
	}

	var deps []Deposition
	if err := decodeInto(resp, &deps); err != nil {
		return nil, fmt.Errorf("searching depositions: decoding response: %w", err)
	}
	return deps, nil
}

// UploadFile puts one file into a deposition's bucket under its base
// name. A source starting with http:// or https:// is fetched and
// streamed through; anything else is read from the local filesystem.
func (c *Client) UploadFile(ctx context.Context, bucketURL, source string) (*DepositionFile, error) {
	reader, name, err := c.openSource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	defer func() { _ = reader.Close() }()

	resp, err := c.doRequest(ctx, http.MethodPut,
		strings.TrimRight(bucketURL, "/")+"/"+url.PathEscape(name),
		"application/octet-stream", reader)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	var file DepositionFile
	if err := decodeInto(resp, &file); err != nil {
		return nil, fmt.Errorf("uploading %s: decoding response: %w", name, err)
	}
	return &file, nil
}

// openSource opens a local path or fetches a remote URL, returning the
// content stream and the file name to store it under.
func (c *Client) openSource(ctx context.Context, source string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		name := remoteName(source)
		resp, err := c.doRequest(ctx, http.MethodGet, source, "", nil)
		if err != nil {
			return nil, name, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, name, fmt.Errorf("fetching source: unexpected status %d", resp.StatusCode)
		}
		return resp.Body, name, nil
	}

	name := filepath.Base(source)
	f, err := os.Open(source)
	if err != nil {
		return nil, name, err
	}
	return f, name, nil
}

// remoteName extracts the file name from a source URL, ignoring any
// query string.
func remoteName(source string) string {
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(source)
}

// depositionURL builds the canonical URL for one deposition.
func (c *Client) depositionURL(id int64) string {
	return fmt.Sprintf("%s/deposit/depositions/%d", c.baseURL, id)
}
