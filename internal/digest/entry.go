package digest

import (
	"time"

	"github.com/google/uuid"
)

// TimestampFormat is the wire format for entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one audited event in the digest chain.
// encoding/json emits struct fields in declaration order and map keys
// sorted, so the same entry always marshals to the same bytes. The chain
// digests depend on this.
type Entry struct {
	ID            string         `json:"id"`
	Timestamp     string         `json:"ts"`
	Actor         string         `json:"actor"`
	Kind          string         `json:"kind"`
	Description   string         `json:"description,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewEntry builds an entry with a fresh ID and the current UTC timestamp.
func NewEntry(actor, kind, description string) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC().Format(TimestampFormat),
		Actor:       actor,
		Kind:        kind,
		Description: description,
	}
}
