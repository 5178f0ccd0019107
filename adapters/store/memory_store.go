package store

import (
	"context"
	"sync"
	"time"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	nonces            map[string]*core.Challenge
	invalidatedTokens map[string]time.Time
	mu                sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nonces:            make(map[string]*core.Challenge),
		invalidatedTokens: make(map[string]time.Time),
	}
}

// PutNonce stores a challenge, replacing any previous one for the address
func (s *MemoryStore) PutNonce(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nonces[challenge.Address] = challenge

	// Opportunistic sweep of expired challenges
	now := time.Now()
	for addr, ch := range s.nonces {
		if ch.Expired(now) {
			delete(s.nonces, addr)
		}
	}

	return nil
}

// TakeNonce retrieves and removes the challenge for an address
func (s *MemoryStore) TakeNonce(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.nonces[address]
	if !exists {
		return nil, core.ErrNonceNotFound
	}

	// Single use: remove regardless of validity
	delete(s.nonces, address)

	if challenge.Expired(time.Now()) {
		return nil, core.ErrNonceNotFound
	}

	return challenge, nil
}

// InvalidateToken marks a token as invalidated
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime := time.Now().Add(expiry)
	s.invalidatedTokens[tokenID] = expiryTime

	// Start a cleanup goroutine
	go func() {
		time.Sleep(expiry)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the expiry time hasn't changed
		if storedExpiry, exists := s.invalidatedTokens[tokenID]; exists && !storedExpiry.After(expiryTime) {
			delete(s.invalidatedTokens, tokenID)
		}
	}()

	return nil
}

// IsTokenInvalidated checks if a token is invalidated
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}

	// Check if the token invalidation has expired
	if time.Now().After(expiryTime) {
		return false, nil
	}

	return true, nil
}

var _ ports.Store = (*MemoryStore)(nil)
