package vault

import (
	"sync"

	"github.com/marketsport/rinkside/ports"
)

// MemoryVault is an in-memory implementation of the Vault interface,
// primarily for tests.
type MemoryVault struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryVault creates a new in-memory vault
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{data: make(map[string]string)}
}

func (v *MemoryVault) Get(key string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	value, ok := v.data[key]
	return value, ok
}

func (v *MemoryVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.data[key] = value
	return nil
}

func (v *MemoryVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.data, key)
	return nil
}

var _ ports.Vault = (*MemoryVault)(nil)
