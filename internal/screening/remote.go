package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/ratelimit"
)

// maxRemoteBody caps how much of a vendor response is read.
const maxRemoteBody = 1 << 20

// RemoteProvider screens addresses through a vendor HTTP API speaking
// a minimal JSON contract: POST /v1/screen with the input, response
// carrying matched+signals. Successful lookups are cached with a TTL.
type RemoteProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *resultCache
	limiter *ratelimit.Limiter
}

type remoteRequest struct {
	Address   string `json:"address"`
	Chain     string `json:"chain,omitempty"`
	Direction string `json:"direction,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

type remoteResponse struct {
	Matched bool               `json:"matched"`
	Signals []model.RiskSignal `json:"signals"`
}

// NewRemoteProvider builds a vendor API provider. Timeouts come from
// the aggregator through the request context, so the underlying client
// carries none of its own.
func NewRemoteProvider(name, baseURL, apiKey string, cacheTTL time.Duration) (*RemoteProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("screening: remote provider name is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("screening: remote provider %s has invalid base URL %q", name, baseURL)
	}
	return &RemoteProvider{
		name:    name,
		baseURL: u.String(),
		apiKey:  apiKey,
		client:  &http.Client{},
		cache:   newResultCache(cacheTTL),
	}, nil
}

// SetRateLimit caps lookups against the vendor. Cached hits do not
// consume the budget.
func (p *RemoteProvider) SetRateLimit(limit ratelimit.Limit) {
	if limit.Enabled() {
		p.limiter = ratelimit.New(limit)
	}
}

// Name implements Provider.
func (p *RemoteProvider) Name() string { return p.name }

// ScreenAddress implements Provider.
func (p *RemoteProvider) ScreenAddress(ctx context.Context, in Input) (model.ProviderResult, error) {
	if cached, ok := p.cache.get(in); ok {
		return cached, nil
	}

	if p.limiter != nil {
		if res := p.limiter.Allow(); res.Exceeded {
			return model.ProviderResult{}, errors.New(res.Reason())
		}
	}

	body, err := json.Marshal(remoteRequest{
		Address:   in.Address,
		Chain:     in.Chain,
		Direction: string(in.Direction),
		Amount:    in.Amount,
	})
	if err != nil {
		return model.ProviderResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/screen", bytes.NewReader(body))
	if err != nil {
		return model.ProviderResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return model.ProviderResult{}, fmt.Errorf("call vendor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.ProviderResult{}, fmt.Errorf("vendor returned status %d", resp.StatusCode)
	}

	var decoded remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&decoded); err != nil {
		return model.ProviderResult{}, fmt.Errorf("decode response: %w", err)
	}

	res := model.ProviderResult{Matched: decoded.Matched, Signals: decoded.Signals}
	for i := range res.Signals {
		res.Signals[i].Provider = p.name
		if res.Signals[i].Direction == "" {
			res.Signals[i].Direction = in.Direction
		}
	}

	p.cache.put(in, res)
	return res, nil
}

// Healthy implements Provider by probing the vendor health endpoint.
func (p *RemoteProvider) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxRemoteBody))
	return resp.StatusCode == http.StatusOK
}
