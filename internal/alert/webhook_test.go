package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchMatchesEvents(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"block"}},
	})

	d.Dispatch(Event{Decision: "block", Kind: "screening", Address: "0xbad"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 1 {
		t.Errorf("expected 1 call, got %d", called.Load())
	}
}

func TestDispatchSkipsNonMatching(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"block"}},
	})

	d.Dispatch(Event{Decision: "approve", Kind: "screening", Address: "0xgood"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 0 {
		t.Errorf("expected 0 calls for non-matching event, got %d", called.Load())
	}
}

func TestDispatchMultipleWebhooks(t *testing.T) {
	var called atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	srv1 := httptest.NewServer(handler)
	defer srv1.Close()
	srv2 := httptest.NewServer(handler)
	defer srv2.Close()

	d := NewDispatcher([]Config{
		{URL: srv1.URL, Format: "generic", Events: []string{"block"}},
		{URL: srv2.URL, Format: "generic", Events: []string{"block", "review"}},
	})

	d.Dispatch(Event{Decision: "block", Kind: "screening", Address: "0xbad"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 2 {
		t.Errorf("expected 2 calls (both webhooks match), got %d", called.Load())
	}
}

func TestDispatchMatchesForcedReviewType(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"forced_review"}},
	})

	d.Dispatch(Event{Decision: "review", Type: "forced_review", Kind: "screening", Address: "0xabc"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 1 {
		t.Errorf("expected 1 call for forced_review type match, got %d", called.Load())
	}
}

func TestDispatchOnNilDispatcher(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Decision: "block"}) // must not panic
}

func TestRetryOnServerError(t *testing.T) {
	oldBackoff := retryBackoff
	retryBackoff = time.Millisecond
	defer func() { retryBackoff = oldBackoff }()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := Send(Config{URL: srv.URL, Format: "generic"}, Event{Decision: "block"})
	if err != nil {
		t.Errorf("expected success after retries, got: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := Send(Config{URL: srv.URL, Format: "generic"}, Event{Decision: "block"})
	if err == nil {
		t.Error("expected error on 400, got nil")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt (no retry on 4xx), got %d", attempts.Load())
	}
}

func TestFormatGenericJSON(t *testing.T) {
	event := Event{
		Timestamp: "2026-03-01T14:00:00.000Z",
		RequestID: "r-123",
		Kind:      "screening",
		Address:   "0xbad",
		Decision:  "block",
		Severity:  "blocklist",
		RiskScore: 100,
		Reason:    "blocklist match",
	}

	data, err := FormatPayload("generic", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed Event
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("generic format is not valid JSON: %v", err)
	}
	if parsed.RequestID != "r-123" {
		t.Errorf("expected request_id r-123, got %s", parsed.RequestID)
	}
	if parsed.Decision != "block" {
		t.Errorf("expected decision block, got %s", parsed.Decision)
	}
}

func TestFormatSlackBlockKit(t *testing.T) {
	event := Event{
		Kind:      "screening",
		Address:   "0xbad",
		Decision:  "block",
		Severity:  "severe",
		RiskScore: 95,
		Reason:    "sanctions dataset match",
	}

	data, err := FormatPayload("slack", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("slack format is not valid JSON: %v", err)
	}

	blocks, ok := parsed["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in slack payload")
	}
	if len(blocks) < 2 {
		t.Fatalf("expected at least 2 blocks, got %d", len(blocks))
	}

	header, _ := blocks[0].(map[string]any)
	if header["type"] != "header" {
		t.Errorf("expected header block, got %s", header["type"])
	}

	section, _ := blocks[1].(map[string]any)
	if section["type"] != "section" {
		t.Errorf("expected section block, got %s", section["type"])
	}
	fields, ok := section["fields"].([]any)
	if !ok || len(fields) < 4 {
		t.Errorf("expected at least 4 fields in section, got %v", fields)
	}
}

func TestFormatPagerDuty(t *testing.T) {
	event := Event{
		Kind:      "screening",
		Address:   "0xbad",
		Decision:  "block",
		Severity:  "severe",
		RiskScore: 95,
		Reason:    "sanctions dataset match",
	}

	data, err := FormatPayload("pagerduty", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("pagerduty format is not valid JSON: %v", err)
	}

	if parsed["event_action"] != "trigger" {
		t.Errorf("expected event_action trigger, got %v", parsed["event_action"])
	}

	payload, ok := parsed["payload"].(map[string]any)
	if !ok {
		t.Fatal("expected payload object")
	}
	if payload["severity"] != "critical" {
		t.Errorf("expected severity critical for a severe signal, got %v", payload["severity"])
	}
	if payload["source"] != "ledgerguard" {
		t.Errorf("expected source ledgerguard, got %v", payload["source"])
	}
}

func TestPagerSeverityMapping(t *testing.T) {
	cases := []struct {
		severity string
		want     string
	}{
		{severity: "blocklist", want: "critical"},
		{severity: "severe", want: "critical"},
		{severity: "high", want: "error"},
		{severity: "medium", want: "warning"},
		{severity: "low", want: "info"},
		{severity: "", want: "info"},
	}
	for _, tc := range cases {
		if got := pagerSeverity(tc.severity); got != tc.want {
			t.Errorf("pagerSeverity(%q) = %q, want %q", tc.severity, got, tc.want)
		}
	}
}

func TestNewDispatcherNilOnEmpty(t *testing.T) {
	d := NewDispatcher(nil)
	if d != nil {
		t.Error("expected nil dispatcher for empty configs")
	}

	d = NewDispatcher([]Config{})
	if d != nil {
		t.Error("expected nil dispatcher for zero-length configs")
	}
}
