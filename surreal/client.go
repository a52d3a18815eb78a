package surreal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alexandru2984/taskauth/httpx"
)

var (
	// ErrUnavailable is returned when the backend cannot be reached or keeps
	// failing after the retry budget is exhausted.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrQueryRejected is returned for terminal (4xx) responses and
	// statement-level failures reported by the backend.
	ErrQueryRejected = errors.New("backend rejected query")
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("record not found")
)

// Config defines a public type used by taskauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	Timeout   time.Duration
	Backoff   []time.Duration
}

// Client defines a public type used by taskauth APIs.
//
// Client holds one reusable HTTP connection pool to the backend; create it
// once and share it across all stores.
type Client struct {
	http *resty.Client
}

// queryResult is one statement outcome in a /sql response body.
type queryResult struct {
	Status string          `json:"status"`
	Detail string          `json:"detail"`
	Result json.RawMessage `json:"result"`
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("backend URL must be configured")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("backend credentials must be configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		http: httpx.New(httpx.Config{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Backoff: cfg.Backoff,
			Headers: map[string]string{
				"Surreal-NS": cfg.Namespace,
				"Surreal-DB": cfg.Database,
			},
			Username: cfg.Username,
			Password: cfg.Password,
		}),
	}, nil
}

// Execute runs one fixed statement with bind variables and returns the raw
// result rows of that statement.
//
// Variables are carried as request query parameters, out-of-band from the
// statement text. Transport failures and exhausted retries map to
// [ErrUnavailable]; terminal responses and statement errors map to
// [ErrQueryRejected].
func (c *Client) Execute(ctx context.Context, statement string, vars map[string]string) (json.RawMessage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(statement)
	for k, v := range vars {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Post("/sql")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("%w: status %d after retries", ErrUnavailable, resp.StatusCode())
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrQueryRejected, resp.StatusCode())
	}

	var results []queryResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	first := results[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("%w: %s %s", ErrQueryRejected, first.Status, first.Detail)
	}

	return first.Result, nil
}
