// Package ledgerguard provides a Go client for the ledgerguard screening
// service. It screens addresses and transactions over the HTTP API, wraps
// transfer functions so blocked transfers never execute, and exposes the
// service's trust and provider-health endpoints.
//
// Usage:
//
//	lg, err := ledgerguard.New("http://localhost:8880")
//	guarded := lg.GuardTransfer(sendFunds)
//	receipt, err := guarded(ctx, ledgerguard.Transfer{
//	    AgentID:     "atlas",
//	    Amount:      "2500.00",
//	    Destination: "0xabc123...",
//	})
//
// A *BlockedError means the service refused the transfer; any other error
// is a transport or API failure. External users import
// github.com/ledgerguard/ledgerguard/sdk/go/ledgerguard.
package ledgerguard
