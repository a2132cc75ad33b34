package ledgerguard

import (
	"context"
	"fmt"
)

// TransferFunc executes a transfer. GuardTransfer wraps functions of
// this shape so the service rules on every transfer first.
type TransferFunc func(ctx context.Context, t Transfer) (any, error)

// GuardTransfer returns a TransferFunc that verifies the transfer with
// the service before calling fn. Blocked transfers return a
// *BlockedError without fn ever running; transport failures also stop
// the transfer, as plain errors.
func (c *Client) GuardTransfer(fn TransferFunc, opts ...GuardOption) TransferFunc {
	gcfg := guardConfig{}
	for _, o := range opts {
		o(&gcfg)
	}

	return func(ctx context.Context, t Transfer) (any, error) {
		verdict, err := c.VerifyTransfer(ctx, t)
		if err != nil {
			return nil, err
		}

		switch verdict.Decision {
		case Block:
			return nil, blocked(t, verdict)
		case Review:
			if !gcfg.allowReview {
				return nil, blocked(t, verdict)
			}
		}

		return fn(ctx, t)
	}
}

func blocked(t Transfer, v Verdict) *BlockedError {
	return &BlockedError{
		Transfer:  t,
		Decision:  v.Decision,
		RiskScore: v.Risk.Score,
		Reason:    blockReason(v),
	}
}

// blockReason picks the most severe screening signal's description, or
// falls back to the risk score when screening found nothing.
func blockReason(v Verdict) string {
	var best Signal
	found := false
	for _, leg := range []Screening{v.Screening.To, v.Screening.From} {
		for _, pr := range leg.ProviderResults {
			for _, sig := range pr.Signals {
				if !found || sig.Severity.Rank() > best.Severity.Rank() {
					best = sig
					found = true
				}
			}
		}
	}
	if found && best.Description != "" {
		return best.Description
	}
	return fmt.Sprintf("risk score %d", v.Risk.Score)
}
