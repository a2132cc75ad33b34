package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenesisDigest is the prev_digest anchoring the first link in every chain.
const GenesisDigest = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Link binds an entry to its position in the chain. Each link's digest
// covers the previous link's digest and the entry's canonical JSON,
// forming a tamper-evident chain.
type Link struct {
	Index      int    `json:"index"`
	PrevDigest string `json:"prev_digest"`
	Digest     string `json:"digest"`
	Entry      Entry  `json:"entry"`
}

// Chain is an append-only sequence of SHA-256 linked entries.
// All operations are serialized by a mutex; a Chain is safe for
// concurrent use.
type Chain struct {
	mu    sync.Mutex
	links []Link
}

// New returns an empty chain.
func New() *Chain {
	return &Chain{}
}

// Append adds entry to the chain and returns the new link.
// Empty ID and Timestamp fields are filled in before hashing.
func (c *Chain) Append(entry Entry) (Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	prev := GenesisDigest
	if n := len(c.links); n > 0 {
		prev = c.links[n-1].Digest
	}

	canonical, err := json.Marshal(entry)
	if err != nil {
		return Link{}, fmt.Errorf("digest: marshal entry: %w", err)
	}

	link := Link{
		Index:      len(c.links),
		PrevDigest: prev,
		Digest:     chainDigest(prev, canonical),
		Entry:      entry,
	}
	c.links = append(c.links, link)
	return link, nil
}

// Len returns the number of links in the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.links)
}

// TerminalDigest returns the digest of the last link, or "" for an
// empty chain.
func (c *Chain) TerminalDigest() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.links) == 0 {
		return ""
	}
	return c.links[len(c.links)-1].Digest
}

// Links returns a copy of the chain's links in append order.
func (c *Chain) Links() []Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// chainDigest returns "sha256:<hex>" over the previous digest
// concatenated with the entry's canonical bytes.
func chainDigest(prev string, canonical []byte) string {
	h := sha256.New()
	h.Write([]byte(prev))
	h.Write(canonical)
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}
