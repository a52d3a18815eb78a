// Package httpx builds the shared outbound HTTP clients used to reach the
// persistence backend and the email provider.
//
// Each peer gets one long-lived [resty.Client] so connections are reused
// across calls instead of re-established per request. Retries cover
// transport failures and 5xx responses; 4xx responses are terminal — the
// server will never accept the request as-is, so repeating it only burns
// the budget. The inter-attempt waits follow an explicit per-peer schedule
// supplied by the call site.
package httpx

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// Config describes one outbound peer.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Backoff is the explicit wait schedule between attempts. The retry
	// budget is len(Backoff): a three-entry schedule yields at most four
	// attempts with the listed waits in between.
	Backoff []time.Duration

	// Headers are attached to every request (API keys, namespace headers).
	Headers map[string]string

	// Username/Password enable Basic auth when Username is non-empty.
	Username string
	Password string
}

// New creates a configured client for one peer.
func New(cfg Config) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(len(cfg.Backoff))

	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}
	if cfg.Username != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}

	client.AddRetryCondition(RetryCondition)

	schedule := append([]time.Duration(nil), cfg.Backoff...)
	client.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		attempt := resp.Request.Attempt
		if attempt < 1 || attempt > len(schedule) {
			return 0, nil
		}
		return schedule[attempt-1], nil
	})

	return client
}

// RetryCondition reports whether a finished attempt should be retried:
// transport-level failures and 5xx responses are transient, everything else
// is terminal.
func RetryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode() >= 500
}
