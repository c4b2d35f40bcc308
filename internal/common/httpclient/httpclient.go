// Package httpclient provides a client for the support case REST API. It
// builds requests against a base server URL, negotiates the response language
// and turns failure envelopes into typed errors.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CasesPath is the API base path for support cases.
const CasesPath = "/api/support-cases"

// FieldError is one entry of the "errors" array of a failure envelope.
type FieldError struct {
	Field     string
	Message   string
	ErrorType string
}

// HTTPError represents a failure envelope returned by the server.
type HTTPError struct {
	StatusCode int          // HTTP status code of the response
	Code       string       // error_code of the envelope, e.g. NOT_FOUND
	Message    string       // message of the envelope or the raw body
	Detail     string       // internal detail, present on server failures
	Fields     []FieldError // field level validation failures
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", f.Field, f.Message)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  detail: %s", e.Detail)
	}
	return b.String()
}

// Client makes requests to a support case server.
type Client struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// ClientOptions contains options for configuring the client.
type ClientOptions struct {
	Language string        // sent as Accept-Language, e.g. "en"
	Timeout  time.Duration // overall request timeout, 30s when zero
}

// NewClient creates a client for the server at serverURL.
func NewClient(serverURL string, opts ...ClientOptions) *Client {
	o := ClientOptions{}
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return &Client{
		serverURL:  serverURL,
		language:   o.Language,
		httpClient: &http.Client{Timeout: o.Timeout},
	}
}

// RequestOptions contains options for making HTTP requests.
// QueryParams and Body are optional.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST)
	Path        string            // API endpoint path
	QueryParams map[string]string // Optional query parameters; empty values are dropped
	Body        []byte            // Optional request body
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body, Location header (if present), and any error that occurred.
func (c *Client) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid server URL: %v", err)
	}
	trailingSlash := strings.HasSuffix(opts.Path, "/")
	u.Path = path.Join(u.Path, opts.Path)
	if trailingSlash && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	q := u.Query()
	for k, v := range opts.QueryParams {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bytes.NewReader(opts.Body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", parseError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Location"), nil
}

func parseError(statusCode int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: statusCode}
	if !gjson.ValidBytes(body) || !gjson.GetBytes(body, "error_code").Exists() {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(statusCode)
		}
		return e
	}
	e.Code = gjson.GetBytes(body, "error_code").String()
	e.Message = gjson.GetBytes(body, "message").String()
	e.Detail = gjson.GetBytes(body, "detail").String()
	gjson.GetBytes(body, "errors").ForEach(func(_, v gjson.Result) bool {
		e.Fields = append(e.Fields, FieldError{
			Field:     v.Get("field").String(),
			Message:   v.Get("message").String(),
			ErrorType: v.Get("error_type").String(),
		})
		return true
	})
	return e
}

// CreateCase posts a new case. data is the JSON request body.
// Returns the response body and the Location of the created case.
func (c *Client) CreateCase(ctx context.Context, data []byte) ([]byte, string, error) {
	return c.DoRequest(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   CasesPath + "/",
		Body:   data,
	})
}

// GetCase retrieves one case by id.
func (c *Client) GetCase(ctx context.Context, id string) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   CasesPath + "/case/" + url.PathEscape(id),
	})
	return body, err
}

// ListCases retrieves one page of cases. queryParams holds the filters and
// page/size, with the same names the server accepts.
func (c *Client) ListCases(ctx context.Context, queryParams map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodGet,
		Path:        CasesPath + "/",
		QueryParams: queryParams,
	})
	return body, err
}

// Ready reports whether the server answers its readiness probe.
func (c *Client) Ready(ctx context.Context) error {
	_, _, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: "/ready"})
	return err
}
