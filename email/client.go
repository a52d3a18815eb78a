// Package email sends transactional mail through the provider's HTTPS API.
//
// Delivery is best-effort from the engine's point of view: the engine logs a
// failed send and carries on, because a signup or reset request must not
// fail on a notification. This package still reports errors faithfully —
// the swallowing happens at the call site, not here.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alexandru2984/taskauth/httpx"
)

const defaultBaseURL = "https://api.brevo.com"

// ErrSendFailed is returned when the provider rejects a message or stays
// unreachable past the retry budget.
var ErrSendFailed = errors.New("email send failed")

// Config defines a public type used by taskauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	BaseURL     string // defaults to the provider endpoint; tests override
	Timeout     time.Duration
	Backoff     []time.Duration
}

// Message is one transactional email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// Client defines a public type used by taskauth APIs.
//
// Client holds one reusable connection to the provider; create it once and
// share it.
type Client struct {
	http   *resty.Client
	sender party
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("email API key must be configured")
	}
	if cfg.SenderEmail == "" {
		return nil, errors.New("email sender address must be configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		http: httpx.New(httpx.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Backoff: cfg.Backoff,
			Headers: map[string]string{"api-key": cfg.APIKey},
		}),
		sender: party{Name: cfg.SenderName, Email: cfg.SenderEmail},
	}, nil
}

// Send delivers one message. Transient provider failures are retried on the
// configured schedule; anything still failing afterwards comes back wrapped
// in [ErrSendFailed].
func (c *Client) Send(ctx context.Context, msg Message) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{
			Sender:      c.sender,
			To:          []party{{Name: msg.ToName, Email: msg.ToEmail}},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
		}).
		Post("/v3/smtp/email")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode())
	}

	return nil
}

// SendVerificationCode mails the 6-digit signup verification code.
func (c *Client) SendVerificationCode(ctx context.Context, toEmail, toName, code string) error {
	return c.Send(ctx, Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: "Verify your email",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>. It expires in 10 minutes.</p>",
			toName, code,
		),
	})
}

// SendPasswordReset mails the reset token the handler layer turns into a
// reset link.
func (c *Client) SendPasswordReset(ctx context.Context, toEmail, toName, token string) error {
	return c.Send(ctx, Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Use this token to reset your password: <strong>%s</strong>. It expires in 1 hour. If you did not request a reset, ignore this email.</p>",
			toName, token,
		),
	})
}
