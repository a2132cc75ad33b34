package ledgerguard

import (
	"net/http"
	"time"
)

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// WithHTTPClient supplies the http.Client used for every request. When
// set, WithTimeout is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) { c.userAgent = ua }
}

// GuardOption configures a single GuardTransfer call.
type GuardOption func(*guardConfig)

type guardConfig struct {
	allowReview bool
}

// GuardAllowReview lets transfers the service marks for review proceed.
// By default both review and block verdicts stop the transfer.
func GuardAllowReview() GuardOption {
	return func(g *guardConfig) { g.allowReview = true }
}
