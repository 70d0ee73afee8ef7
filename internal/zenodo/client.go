// SPDX-License-Identifier: MPL-2.0

package zenodo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// ProductionBaseURL is the base URL of the production Zenodo API.
	ProductionBaseURL = "https://zenodo.org/api"
	// SandboxBaseURL is the base URL of the Zenodo sandbox API.
	SandboxBaseURL = "https://sandbox.zenodo.org/api"

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	// Prevents unbounded memory consumption from malformed responses.
	maxJSONResponseBytes = 10 << 20
)

type (
	// Client calls the Zenodo deposit API. All operations are thin,
	// retry-free wrappers: a failure is surfaced once and left to the
	// caller. The access token travels in the Authorization header, never
	// in the URL, so transport errors can't echo it back.
	Client struct {
		httpClient *http.Client
		baseURL    string // API base URL (production, sandbox, or a test server)
		token      string // Access token for the selected environment
		userAgent  string // User-Agent header value
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	// APIError is a non-2xx response from the Zenodo API, decoded from its
	// error JSON when possible.
	APIError struct {
		StatusCode int
		Message    string
		Fields     []FieldError
	}

	// FieldError is one per-field entry of a Zenodo validation error.
	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	// apiErrorBody is the JSON wire format of a Zenodo error response.
	apiErrorBody struct {
		Message string       `json:"message"`
		Status  int          `json:"status"`
		Errors  []FieldError `json:"errors"`
	}
)

// BaseURL returns the API base URL for the selected environment.
func BaseURL(sandbox bool) string {
	if sandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(z *Client) {
		z.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(z *Client) {
		z.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(z *Client) {
		z.userAgent = ua
	}
}

// NewClient creates a Zenodo API client for the given environment and
// access token. Defaults: production base URL, http.DefaultClient,
// userAgent="zenododeposit/dev".
func NewClient(token string, sandbox bool, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    BaseURL(sandbox),
		token:      token,
		userAgent:  "zenododeposit/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error formats the API failure with its status and any per-field details.
func (e *APIError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "zenodo api: status %d", e.StatusCode)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	for _, fe := range e.Fields {
		fmt.Fprintf(&sb, "\n  %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// doRequest creates and executes an HTTP request with common API headers.
// The body may be nil. Auth is attached only for URLs under the API base;
// deposit bucket links live under the same base, so uploads stay
// authenticated while third-party source URLs never see the token.
func (c *Client) doRequest(ctx context.Context, method, reqURL, contentType string, body io.Reader) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" && sameHost(reqURL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

// checkStatus converts a non-2xx response into an *APIError, decoding the
// Zenodo error body when present. The response body is consumed.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body apiErrorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	}

	return apiErr
}

// decodeInto decodes a bounded JSON response body into v.
func decodeInto(resp *http.Response, v any) error {
	return json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(v)
}

// sameHost reports whether reqURL is under the configured API base URL.
func sameHost(reqURL, baseURL string) bool {
	return strings.HasPrefix(reqURL, baseURL+"/") || reqURL == baseURL
}
