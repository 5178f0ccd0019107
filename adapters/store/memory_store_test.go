package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsport/rinkside/core"
)

func TestMemoryStoreNonceLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	challenge := &core.Challenge{
		Address:   "0xabc",
		Nonce:     "nonce-1",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.PutNonce(ctx, challenge))

	got, err := s.TakeNonce(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "nonce-1", got.Nonce)

	// single use
	_, err = s.TakeNonce(ctx, "0xabc")
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestMemoryStoreNonceReplacement(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	put := func(nonce string) {
		require.NoError(t, s.PutNonce(ctx, &core.Challenge{
			Address:   "0xabc",
			Nonce:     nonce,
			ExpiresAt: time.Now().Add(time.Minute),
		}))
	}
	put("first")
	put("second")

	got, err := s.TakeNonce(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Nonce)
}

func TestMemoryStoreExpiredNonce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutNonce(ctx, &core.Challenge{
		Address:   "0xabc",
		Nonce:     "stale",
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := s.TakeNonce(ctx, "0xabc")
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestMemoryStoreTokenInvalidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	invalidated, err := s.IsTokenInvalidated(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, invalidated)

	require.NoError(t, s.InvalidateToken(ctx, "token-1", time.Minute))

	invalidated, err = s.IsTokenInvalidated(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, invalidated)
}
