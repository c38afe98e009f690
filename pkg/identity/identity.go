// Package identity persists the logged-in user's e-mail across restarts.
package identity

import (
	"fmt"
	"strings"
)

// Key is the fixed name the identity is stored under in every backend.
const Key = "userEmail"

// Store is a durable single-value store for the logged-in identity.
type Store interface {
	// Load returns the stored identity, or "" if nobody is logged in.
	Load() (string, error)
	// Save replaces the stored identity.
	Save(email string) error
	// Clear removes the stored identity. Clearing an empty store is not an error.
	Clear() error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// Open builds the store for backend. path is only used by the file backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		if path == "" {
			return nil, fmt.Errorf("file identity store needs a state file path")
		}
		return NewBoltStore(path)
	case BackendKeyring:
		return NewKeyringStore(ServiceName), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown identity store %q: must be one of file, keyring, memory", backend)
}
