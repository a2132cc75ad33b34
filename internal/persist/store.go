package persist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound reports a key with no stored document.
var ErrNotFound = errors.New("persist: key not found")

// Store is the persistence boundary: a small keyed-document store used
// for chain snapshots and screening history. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// validKey matches alphanumeric, dash, underscore, and dot characters only.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// validateKey rejects keys that could cause path traversal when a key
// ends up in a filename, such as an exported snapshot.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("persist: key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("persist: key must not contain '..'")
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("persist: key %q contains invalid characters: only alphanumeric, dash, underscore, and dot are allowed", key)
	}
	return nil
}
