package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/zalando/go-keyring"
)

// ErrNoCredential is returned by CredentialStore.Get when nothing is stored
// under the key.
var ErrNoCredential = errors.New("no stored credential")

// CredentialStore persists small secrets (the bearer token and the cached
// profile) under a namespace of its own.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// KeyringCredentials stores secrets in the operating system keychain.
type KeyringCredentials struct {
	Service string
}

// NewKeyringCredentials scopes keychain entries to service.
func NewKeyringCredentials(service string) *KeyringCredentials {
	return &KeyringCredentials{Service: service}
}

func (k *KeyringCredentials) Get(key string) (string, error) {
	v, err := keyring.Get(k.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyringRead, err)
	}
	return v, nil
}

func (k *KeyringCredentials) Set(key, value string) error {
	if err := keyring.Set(k.Service, key, value); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
	}
	return nil
}

// Delete removes the entry; deleting a missing entry is not an error.
func (k *KeyringCredentials) Delete(key string) error {
	err := keyring.Delete(k.Service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", config.ErrKeyringDelete, err)
	}
	return nil
}

// MemoryCredentials keeps secrets in process memory. Used when no keychain is
// available and in tests.
type MemoryCredentials struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryCredentials returns an empty store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{values: make(map[string]string)}
}

func (m *MemoryCredentials) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNoCredential
	}
	return v, nil
}

func (m *MemoryCredentials) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryCredentials) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
