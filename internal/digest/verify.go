package digest

import (
	"encoding/json"
	"fmt"
)

// VerifyResult holds the outcome of a chain verification.
// BreakIndex is the index of the first broken link, or -1 when the
// chain is intact.
type VerifyResult struct {
	Valid      bool   `json:"valid"`
	Length     int    `json:"length"`
	BreakIndex int    `json:"break_index"`
	Reason     string `json:"reason,omitempty"`
}

// Verify walks the chain from genesis and recomputes every digest.
// It reports the first broken link, or Valid=true when the chain is
// intact. An empty chain is valid.
func (c *Chain) Verify() VerifyResult {
	c.mu.Lock()
	links := make([]Link, len(c.links))
	copy(links, c.links)
	c.mu.Unlock()

	return verifyLinks(links)
}

func verifyLinks(links []Link) VerifyResult {
	prev := GenesisDigest
	for i, link := range links {
		if link.Index != i {
			return broken(len(links), i,
				fmt.Sprintf("link index %d out of sequence, want %d", link.Index, i))
		}
		if link.PrevDigest != prev {
			return broken(len(links), i,
				fmt.Sprintf("prev digest mismatch: chain has %s, link references %s", prev, link.PrevDigest))
		}
		canonical, err := json.Marshal(link.Entry)
		if err != nil {
			return broken(len(links), i, fmt.Sprintf("marshal entry: %v", err))
		}
		if want := chainDigest(prev, canonical); link.Digest != want {
			return broken(len(links), i,
				fmt.Sprintf("digest mismatch: computed %s, link has %s", want, link.Digest))
		}
		prev = link.Digest
	}
	return VerifyResult{Valid: true, Length: len(links), BreakIndex: -1}
}

func broken(length, index int, reason string) VerifyResult {
	return VerifyResult{Length: length, BreakIndex: index, Reason: reason}
}
