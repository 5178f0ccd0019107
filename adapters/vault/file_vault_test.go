package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsport/rinkside/ports"
)

func TestFileVaultPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")

	v, err := NewFileVault(path)
	require.NoError(t, err)
	require.NoError(t, v.Set(ports.VaultKeyToken, "token-1"))
	require.NoError(t, v.Set(ports.VaultKeyAddress, "0xabc"))

	reopened, err := NewFileVault(path)
	require.NoError(t, err)

	token, ok := reopened.Get(ports.VaultKeyToken)
	require.True(t, ok)
	assert.Equal(t, "token-1", token)
	addr, ok := reopened.Get(ports.VaultKeyAddress)
	require.True(t, ok)
	assert.Equal(t, "0xabc", addr)
}

func TestFileVaultDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")

	v, err := NewFileVault(path)
	require.NoError(t, err)
	require.NoError(t, v.Set(ports.VaultKeyToken, "token-1"))
	require.NoError(t, v.Delete(ports.VaultKeyToken))

	_, ok := v.Get(ports.VaultKeyToken)
	assert.False(t, ok)

	reopened, err := NewFileVault(path)
	require.NoError(t, err)
	_, ok = reopened.Get(ports.VaultKeyToken)
	assert.False(t, ok)
}

func TestFileVaultCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	v, err := NewFileVault(path)
	require.NoError(t, err)
	_, ok := v.Get(ports.VaultKeyToken)
	assert.False(t, ok)
}

func TestMemoryVault(t *testing.T) {
	v := NewMemoryVault()

	_, ok := v.Get("missing")
	assert.False(t, ok)

	require.NoError(t, v.Set("k", "v1"))
	require.NoError(t, v.Set("k", "v2"))
	got, ok := v.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)

	require.NoError(t, v.Delete("k"))
	_, ok = v.Get("k")
	assert.False(t, ok)
}
