package identity

import (
	"errors"
	"fmt"

	keyringlib "github.com/zalando/go-keyring"
)

// ServiceName is the OS keyring service the identity is filed under.
const ServiceName = "givebox"

// KeyringStore keeps the identity in the operating system's keyring.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a store under the given keyring service.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Load() (string, error) {
	email, err := keyringlib.Get(s.service, Key)
	if err != nil {
		if errors.Is(err, keyringlib.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read identity from OS keyring: %w", err)
	}
	return email, nil
}

func (s *KeyringStore) Save(email string) error {
	if err := keyringlib.Set(s.service, Key, email); err != nil {
		return fmt.Errorf("failed to store identity in OS keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	err := keyringlib.Delete(s.service, Key)
	if err != nil && !errors.Is(err, keyringlib.ErrNotFound) {
		return fmt.Errorf("failed to remove identity from OS keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Close() error { return nil }

var _ Store = (*KeyringStore)(nil)
