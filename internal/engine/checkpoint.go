package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgerguard/ledgerguard/internal/digest"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/persist"
)

// Checkpoint exports the digest chain, and the watchlists when wired,
// to the configured store. Without a store it is a no-op, so shutdown
// hooks can call it unconditionally.
func (e *Engine) Checkpoint(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	data, err := e.Chain.Export()
	if err != nil {
		return fmt.Errorf("engine: export chain: %w", err)
	}
	if err := e.store.Save(ctx, e.chainKey(), data); err != nil {
		return fmt.Errorf("engine: checkpoint chain: %w", err)
	}
	e.logger.Info("chain checkpoint saved", "key", e.chainKey(), "length", e.Chain.Len())

	if e.lists != nil {
		snap, err := e.lists.Snapshot()
		if err != nil {
			return fmt.Errorf("engine: snapshot lists: %w", err)
		}
		if err := e.store.Save(ctx, e.listsKey(), snap); err != nil {
			return fmt.Errorf("engine: checkpoint lists: %w", err)
		}
	}
	return nil
}

// Restore replaces the engine's chain with the last checkpoint. A
// missing checkpoint leaves the current chain in place. The restored
// chain is verified before it is adopted; a broken checkpoint is an
// error, never a silent fresh start.
//
// Restore is meant for startup, before the engine serves requests.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	data, err := e.store.Load(ctx, e.chainKey())
	if errors.Is(err, persist.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("engine: load chain checkpoint: %w", err)
	}
	chain, err := digest.Import(data)
	if err != nil {
		return fmt.Errorf("engine: import chain checkpoint: %w", err)
	}
	if vr := chain.Verify(); !vr.Valid {
		return fmt.Errorf("engine: checkpoint broken at link %d: %s", vr.BreakIndex, vr.Reason)
	}
	e.Chain = chain
	e.metrics.SetChainLength(chain.Len())
	e.logger.Info("chain restored from checkpoint", "key", e.chainKey(), "length", chain.Len())

	return e.restoreLists(ctx)
}

// restoreLists seeds an empty watchlist from the last snapshot. A
// watchlist that already has entries came from the configured lists
// file, which wins over the snapshot.
func (e *Engine) restoreLists(ctx context.Context) error {
	if e.lists == nil {
		return nil
	}
	if blocked, allowed := e.lists.Counts(); blocked > 0 || allowed > 0 {
		return nil
	}
	snap, err := e.store.Load(ctx, e.listsKey())
	if errors.Is(err, persist.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("engine: load list snapshot: %w", err)
	}
	if err := e.lists.RestoreSnapshot(snap); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	blocked, allowed := e.lists.Counts()
	e.logger.Info("watchlists restored from snapshot",
		"key", e.listsKey(),
		"blocked", blocked,
		"allowed", allowed)
	return nil
}

// saveScreening writes one screening result to the history store.
// History is best-effort: a failed write is logged and the decision
// stands.
func (e *Engine) saveScreening(ctx context.Context, res model.ScreeningResult) {
	if e.store == nil || res.RequestID == "" {
		return
	}
	data, err := json.Marshal(res)
	if err == nil {
		err = e.store.Save(ctx, "screening-"+res.RequestID, data)
	}
	if err != nil {
		e.logger.Warn("screening history save failed",
			"request_id", res.RequestID,
			"error", err)
	}
}
