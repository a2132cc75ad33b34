package ledgerguard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if gotPath != "/healthz" {
		t.Errorf("got path %q, want /healthz", gotPath)
	}
}

func TestScreenAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/screen/address" {
			t.Errorf("got path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
			t.Errorf("got user agent %q", ua)
		}

		var req ScreenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Address != "0xbad" || req.Chain != "ethereum" {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(Screening{
			Address:   req.Address,
			Decision:  Block,
			Severity:  SeveritySevere,
			RiskScore: 95,
		})
	})

	res, err := c.ScreenAddress(context.Background(), ScreenRequest{
		Address: "0xbad",
		Chain:   "ethereum",
	})
	if err != nil {
		t.Fatalf("screen failed: %v", err)
	}
	if res.Decision != Block || res.Severity != SeveritySevere || res.RiskScore != 95 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestScreenTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/screen/transaction" {
			t.Errorf("got path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TransactionScreening{
			From:     Screening{Address: "0xaaa", Decision: Approve},
			To:       Screening{Address: "0xbbb", Decision: Review},
			Decision: Review,
		})
	})

	res, err := c.ScreenTransaction(context.Background(), TransactionRequest{From: "0xaaa", To: "0xbbb"})
	if err != nil {
		t.Fatalf("screen failed: %v", err)
	}
	if res.Decision != Review || res.To.Decision != Review {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAgentTrust(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("got method %s, want GET", r.Method)
		}
		if r.URL.Path != "/v1/agents/atlas/trust" {
			t.Errorf("got path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TrustScore{
			AgentID: "atlas",
			Score:   72,
			Level:   "high",
			Factors: []Factor{{Name: "history_depth", Score: 60, Weight: 0.15}},
		})
	})

	score, err := c.AgentTrust(context.Background(), "atlas")
	if err != nil {
		t.Fatalf("trust failed: %v", err)
	}
	if score.Score != 72 || score.Level != "high" || len(score.Factors) != 1 {
		t.Errorf("unexpected score: %+v", score)
	}
}

func TestProvidersHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"dataset": true, "vendor": false})
	})

	health, err := c.ProvidersHealth(context.Background())
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if !health["dataset"] || health["vendor"] {
		t.Errorf("unexpected health: %v", health)
	}
}

func TestAPIErrorDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "address is required"})
	})

	_, err := c.ScreenAddress(context.Background(), ScreenRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "address is required" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
}

func TestAPIErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusInternalServerError)
	})

	err := c.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", apiErr.Status)
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("timeout should not be an APIError: %v", err)
	}
}
