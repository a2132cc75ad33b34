package digest

import (
	"encoding/json"
	"fmt"
)

// ExportVersion identifies the export envelope layout.
const ExportVersion = 1

// Export is the self-contained serialized form of a chain. It carries
// the genesis anchor and every link, enough for an independent party
// to re-verify the chain without other context.
type Export struct {
	Version        int    `json:"version"`
	Genesis        string `json:"genesis"`
	Length         int    `json:"length"`
	TerminalDigest string `json:"terminal_digest,omitempty"`
	Links          []Link `json:"links"`
}

// Export serializes the chain as an indented JSON envelope.
func (c *Chain) Export() ([]byte, error) {
	links := c.Links()
	env := Export{
		Version: ExportVersion,
		Genesis: GenesisDigest,
		Length:  len(links),
		Links:   links,
	}
	if len(links) > 0 {
		env.TerminalDigest = links[len(links)-1].Digest
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("digest: marshal export: %w", err)
	}
	return data, nil
}

// Import reconstructs a chain from exported data. It validates the
// envelope shape only; call Verify on the result to check the digests.
func Import(data []byte) (*Chain, error) {
	var env Export
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("digest: parse export: %w", err)
	}
	if env.Version != ExportVersion {
		return nil, fmt.Errorf("digest: unsupported export version %d", env.Version)
	}
	if env.Genesis != GenesisDigest {
		return nil, fmt.Errorf("digest: unknown genesis %q", env.Genesis)
	}
	if env.Length != len(env.Links) {
		return nil, fmt.Errorf("digest: declared length %d does not match %d links", env.Length, len(env.Links))
	}
	if n := len(env.Links); n > 0 && env.TerminalDigest != env.Links[n-1].Digest {
		return nil, fmt.Errorf("digest: terminal digest does not match last link")
	}
	return &Chain{links: env.Links}, nil
}
