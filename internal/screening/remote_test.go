package screening

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/ratelimit"
)

func TestRemoteScreenAddress(t *testing.T) {
	var gotAuth string
	var gotReq remoteRequest
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/screen" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		calls++
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(remoteResponse{
			Matched: true,
			Signals: []model.RiskSignal{{
				Category:    model.CategorySanctions,
				Severity:    model.SeverityHigh,
				RiskScore:   85,
				Description: "vendor hit",
			}},
		})
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "secret-key", time.Minute)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}

	in := Input{Address: "0xABC", Chain: "ethereum", Direction: model.DirectionOutgoing, Amount: "42.00"}
	res, err := p.ScreenAddress(context.Background(), in)
	if err != nil {
		t.Fatalf("ScreenAddress: %v", err)
	}
	if !res.Matched || len(res.Signals) != 1 {
		t.Fatalf("result = %+v, want one matched signal", res)
	}
	sig := res.Signals[0]
	if sig.Provider != "vendor" {
		t.Errorf("provider = %q, want vendor stamped on the signal", sig.Provider)
	}
	if sig.Direction != model.DirectionOutgoing {
		t.Errorf("direction = %s, want the input direction as default", sig.Direction)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotReq.Address != "0xABC" || gotReq.Chain != "ethereum" || gotReq.Amount != "42.00" {
		t.Errorf("vendor saw request %+v", gotReq)
	}

	// A repeat lookup is served from cache without another call.
	if _, err := p.ScreenAddress(context.Background(), in); err != nil {
		t.Fatalf("cached ScreenAddress: %v", err)
	}
	if calls != 1 {
		t.Errorf("vendor called %d times, want 1", calls)
	}
}

func TestRemoteKeepsVendorDirection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(remoteResponse{
			Matched: true,
			Signals: []model.RiskSignal{{Severity: model.SeverityLow, RiskScore: 10, Direction: model.DirectionBoth}},
		})
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "", 0)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}
	res, err := p.ScreenAddress(context.Background(), Input{Address: "0xabc", Direction: model.DirectionIncoming})
	if err != nil {
		t.Fatalf("ScreenAddress: %v", err)
	}
	if got := res.Signals[0].Direction; got != model.DirectionBoth {
		t.Errorf("direction = %s, want the vendor's value kept", got)
	}
}

func TestRemoteErrorStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "", 0)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}
	if _, err := p.ScreenAddress(context.Background(), Input{Address: "0xabc"}); err == nil {
		t.Error("ScreenAddress accepted a 503")
	}
}

func TestRemoteBadJSONIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{"))
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "", 0)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}
	if _, err := p.ScreenAddress(context.Background(), Input{Address: "0xabc"}); err == nil {
		t.Error("ScreenAddress accepted a truncated body")
	}
}

func TestRemoteHealthy(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		if !healthy {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "", 0)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}
	if !p.Healthy(context.Background()) {
		t.Error("Healthy = false against a 200 endpoint")
	}
	healthy = false
	if p.Healthy(context.Background()) {
		t.Error("Healthy = true against a 503 endpoint")
	}
	srv.Close()
	if p.Healthy(context.Background()) {
		t.Error("Healthy = true against a dead endpoint")
	}
}

func TestRemoteRateLimitRefusesPastCap(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		json.NewEncoder(w).Encode(remoteResponse{})
	}))
	defer srv.Close()

	p, err := NewRemoteProvider("vendor", srv.URL, "", time.Minute)
	if err != nil {
		t.Fatalf("NewRemoteProvider: %v", err)
	}
	p.SetRateLimit(ratelimit.Limit{MaxRequests: 2, Window: time.Hour})

	if _, err := p.ScreenAddress(context.Background(), Input{Address: "0xaaa"}); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	// Cache hit, no budget spent.
	if _, err := p.ScreenAddress(context.Background(), Input{Address: "0xaaa"}); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if _, err := p.ScreenAddress(context.Background(), Input{Address: "0xbbb"}); err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	_, err = p.ScreenAddress(context.Background(), Input{Address: "0xccc"})
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("lookup past cap: err = %v", err)
	}
	if calls != 2 {
		t.Errorf("vendor called %d times, want 2", calls)
	}
}

func TestNewRemoteProviderValidatesSetup(t *testing.T) {
	cases := []struct {
		name    string
		pname   string
		baseURL string
		ok      bool
	}{
		{name: "valid", pname: "vendor", baseURL: "https://screen.example.com", ok: true},
		{name: "missing name", pname: "", baseURL: "https://screen.example.com", ok: false},
		{name: "empty url", pname: "vendor", baseURL: "", ok: false},
		{name: "no scheme", pname: "vendor", baseURL: "screen.example.com", ok: false},
		{name: "no host", pname: "vendor", baseURL: "https://", ok: false},
	}
	for _, tc := range cases {
		_, err := NewRemoteProvider(tc.pname, tc.baseURL, "", 0)
		if tc.ok && err != nil {
			t.Errorf("%s: NewRemoteProvider: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: bad setup accepted", tc.name)
		}
	}
}
