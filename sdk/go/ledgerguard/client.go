package ledgerguard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "ledgerguard-go"
)

// Client talks to a ledgerguard server over HTTP. Safe for concurrent use.
type Client struct {
	baseURL   string
	hc        *http.Client
	userAgent string
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ledgerguard: base URL is required")
	}

	cfg := clientConfig{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		hc:        cfg.httpClient,
		userAgent: cfg.userAgent,
	}, nil
}

// ScreenRequest describes one address to screen.
type ScreenRequest struct {
	Address   string `json:"address"`
	Chain     string `json:"chain,omitempty"`
	Direction string `json:"direction,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// ScreenAddress screens one address through the configured providers.
func (c *Client) ScreenAddress(ctx context.Context, req ScreenRequest) (Screening, error) {
	var res Screening
	err := c.post(ctx, "/v1/screen/address", req, &res)
	return res, err
}

// TransactionRequest describes both sides of a transfer to screen.
type TransactionRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount,omitempty"`
	Chain  string `json:"chain,omitempty"`
}

// ScreenTransaction screens both sides of a transfer and combines the
// verdicts pairwise-worse.
func (c *Client) ScreenTransaction(ctx context.Context, req TransactionRequest) (TransactionScreening, error) {
	var res TransactionScreening
	err := c.post(ctx, "/v1/screen/transaction", req, &res)
	return res, err
}

// Transfer describes a candidate transfer to verify or guard.
type Transfer struct {
	AgentID     string `json:"agent_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination"`
	Chain       string `json:"chain,omitempty"`
}

// VerifyTransfer runs the full pipeline for one transfer: risk
// evaluation, screening of both sides, decision, and recording.
func (c *Client) VerifyTransfer(ctx context.Context, t Transfer) (Verdict, error) {
	var res Verdict
	err := c.post(ctx, "/v1/transactions/verify", t, &res)
	return res, err
}

// AgentTrust fetches the trust score for one agent.
func (c *Client) AgentTrust(ctx context.Context, agentID string) (TrustScore, error) {
	var res TrustScore
	err := c.get(ctx, "/v1/agents/"+url.PathEscape(agentID)+"/trust", &res)
	return res, err
}

// ProvidersHealth probes every configured provider.
func (c *Client) ProvidersHealth(ctx context.Context) (map[string]bool, error) {
	var res map[string]bool
	err := c.get(ctx, "/v1/providers/health", &res)
	return res, err
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ledgerguard: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ledgerguard: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("ledgerguard: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("ledgerguard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ledgerguard: decode response: %w", err)
	}
	return nil
}

// apiError turns a non-2xx response into an *APIError, using the
// server's error envelope when it parses.
func apiError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
