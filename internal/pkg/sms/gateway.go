package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	// ErrGatewayURLRequired is returned when the gateway base URL is missing.
	ErrGatewayURLRequired = errors.New("sms gateway url is required")
	// ErrNoRecipient is returned when Message.To is empty.
	ErrNoRecipient = errors.New("no recipient provided")
	// ErrGatewayRejected is returned when the gateway refuses the message.
	ErrGatewayRejected = errors.New("sms gateway rejected the message")
)

// Gateway is an SMS implementation backed by an HTTP delivery gateway.
type Gateway struct {
	client  *http.Client
	url     string
	apiKey  string
	from    string
	retries uint64
}

// GatewayConfig configures the HTTP gateway implementation.
type GatewayConfig struct {
	// URL is the gateway send endpoint.
	URL string
	// APIKey authenticates requests to the gateway.
	APIKey string
	// From is the sender line shown to recipients.
	From string
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
	// Retries is the number of retry attempts on transient failures.
	Retries uint64
}

type gatewayRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Text string `json:"text"`
}

// NewGateway constructs an HTTP gateway sender.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.URL == "" {
		return nil, ErrGatewayURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retries := cfg.Retries
	if retries == 0 {
		retries = 3
	}

	return &Gateway{
		client:  &http.Client{Timeout: timeout},
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		retries: retries,
	}, nil
}

// Send delivers a message through the gateway.
//
// Transient failures (network errors, 5xx, 429) are retried with exponential
// backoff. A 4xx response is treated as permanent.
func (g *Gateway) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(gatewayRequest{To: msg.To, From: g.from, Text: msg.Text})
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(g.retries, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return g.attempt(ctx, body)
	})
}

func (g *Gateway) attempt(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return retry.RetryableError(fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode))
	default:
		return fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}
}

// Close implements io.Closer for interface compatibility.
func (g *Gateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
