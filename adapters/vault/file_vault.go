package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/marketsport/rinkside/ports"
)

// FileVault persists vault entries to a JSON file. It is the durable
// stand-in for browser localStorage: a handful of fixed keys, no
// versioning, last writer wins.
type FileVault struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileVault opens (or creates) a vault file at path.
func NewFileVault(path string) (*FileVault, error) {
	v := &FileVault{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	if err := json.Unmarshal(raw, &v.data); err != nil {
		// A corrupt vault is not fatal: start fresh, the user re-authenticates.
		v.data = make(map[string]string)
	}

	return v, nil
}

func (v *FileVault) Get(key string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	value, ok := v.data[key]
	return value, ok
}

func (v *FileVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.data[key] = value
	return v.flush()
}

func (v *FileVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.data, key)
	return v.flush()
}

// flush writes the vault atomically via a temp file rename. Caller must
// hold the mutex.
func (v *FileVault) flush() error {
	raw, err := json.MarshalIndent(v.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(v.path), 0o755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}

	if err := os.Rename(tmp, v.path); err != nil {
		return fmt.Errorf("failed to replace vault file: %w", err)
	}

	return nil
}

var _ ports.Vault = (*FileVault)(nil)
