package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerguard/ledgerguard/internal/digest"
	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/screening"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/screen/address", s.handleScreenAddress)
		r.Post("/screen/transaction", s.handleScreenTransaction)
		r.Post("/transactions/verify", s.handleVerifyTransaction)
		r.Post("/actions", s.handleRecordAction)
		r.Get("/agents/{id}/trust", s.handleTrust)
		r.Get("/chain", s.handleChainInspect)
		r.Get("/chain/verify", s.handleChainVerify)
		r.Get("/chain/export", s.handleChainExport)
		r.Get("/providers/health", s.handleProvidersHealth)
		r.Route("/lists/{list}", func(r chi.Router) {
			r.Get("/", s.handleListShow)
			r.Post("/", s.handleListAdd)
			r.Delete("/{address}", s.handleListRemove)
		})
	})
	return r
}

type screenAddressRequest struct {
	Address   string `json:"address"`
	Chain     string `json:"chain,omitempty"`
	Direction string `json:"direction,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

func (s *Server) handleScreenAddress(w http.ResponseWriter, r *http.Request) {
	var req screenAddressRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	res, err := s.engine().ScreenAddress(r.Context(), screening.Input{
		Address:   req.Address,
		Chain:     req.Chain,
		Direction: model.Direction(req.Direction),
		Amount:    req.Amount,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type screenTransactionRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount,omitempty"`
	Chain  string `json:"chain,omitempty"`
}

func (s *Server) handleScreenTransaction(w http.ResponseWriter, r *http.Request) {
	var req screenTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	res, err := s.engine().ScreenTransaction(r.Context(), req.From, req.To, req.Amount, req.Chain)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type verifyTransactionRequest struct {
	AgentID     string `json:"agent_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination"`
	Chain       string `json:"chain,omitempty"`
}

func (s *Server) handleVerifyTransaction(w http.ResponseWriter, r *http.Request) {
	var req verifyTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AgentID == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "agent_id and destination are required")
		return
	}

	verdict, err := s.engine().VerifyTransaction(r.Context(), ledger.Transaction{
		AgentID:     req.AgentID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Source:      req.Source,
		Destination: req.Destination,
		Chain:       req.Chain,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

type actionRequest struct {
	AgentID string `json:"agent_id"`
	Kind    string `json:"kind"`
	Status  string `json:"status,omitempty"`
}

type actionResponse struct {
	Action ledger.Action `json:"action"`
	Link   digest.Link   `json:"link"`
}

func (s *Server) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AgentID == "" || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "agent_id and kind are required")
		return
	}

	stored, link, err := s.engine().ProcessAction(ledger.Action{
		AgentID: req.AgentID,
		Kind:    req.Kind,
		Status:  req.Status,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, actionResponse{Action: stored, Link: link})
}

func (s *Server) handleTrust(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "agent id is required")
		return
	}
	writeJSON(w, http.StatusOK, s.engine().TrustReport(agentID))
}

func (s *Server) handleChainInspect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.engine().Chain.Inspect(digest.Filter{
		Actor:         q.Get("actor"),
		Kind:          q.Get("kind"),
		CorrelationID: q.Get("correlation_id"),
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChainVerify(w http.ResponseWriter, r *http.Request) {
	res := s.engine().Chain.Verify()
	status := http.StatusOK
	if !res.Valid {
		// An invalid audit chain is a server-side integrity failure,
		// not a bad request.
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

func (s *Server) handleChainExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine().Chain.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine().HealthCheck(r.Context()))
}

type listEntryRequest struct {
	Address string   `json:"address"`
	Chains  []string `json:"chains,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	AddedBy string   `json:"added_by,omitempty"`
	TTLSec  int      `json:"ttl_sec,omitempty"`
}

type listResponse struct {
	List    string            `json:"list"`
	Count   int               `json:"count"`
	Entries []watchlist.Entry `json:"entries"`
}

func (s *Server) handleListShow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	lists := s.watchlists()

	var entries []watchlist.Entry
	switch name {
	case "block":
		entries = lists.ExportBlocklist()
	case "allow":
		entries = lists.ExportAllowlist()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown list %q", name))
		return
	}
	writeJSON(w, http.StatusOK, listResponse{List: name, Count: len(entries), Entries: entries})
}

func (s *Server) handleListAdd(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	var req listEntryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	entry := watchlist.Entry{
		Address: req.Address,
		Chains:  req.Chains,
		Reason:  req.Reason,
		AddedBy: req.AddedBy,
	}
	if req.TTLSec > 0 {
		expires := time.Now().UTC().Add(time.Duration(req.TTLSec) * time.Second)
		entry.ExpiresAt = &expires
	}

	lists := s.watchlists()
	var err error
	switch name {
	case "block":
		err = lists.AddBlock(entry)
	case "allow":
		err = lists.AddAllow(entry)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown list %q", name))
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"list": name, "address": req.Address})
}

func (s *Server) handleListRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	address := chi.URLParam(r, "address")
	lists := s.watchlists()

	var removed bool
	switch name {
	case "block":
		removed = lists.RemoveBlock(address)
	case "allow":
		removed = lists.RemoveAllow(address)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown list %q", name))
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, fmt.Sprintf("address not on the %s list", name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"list": name, "address": address})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"uptime_sec":   int(time.Since(s.started).Seconds()),
		"chain_length": s.engine().Chain.Len(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
