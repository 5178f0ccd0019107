package ports

import (
	"context"
	"time"

	"github.com/marketsport/rinkside/core"
)

// Store holds server-side short-lived auth state: issued nonces and
// revoked token IDs. Implementations must expire entries after their TTL.
type Store interface {
	// PutNonce stores the challenge issued for an address, replacing any
	// previous one. A nonce is valid for a single authentication attempt.
	PutNonce(ctx context.Context, challenge *core.Challenge) error

	// TakeNonce retrieves and removes the challenge for an address.
	// Returns core.ErrNonceNotFound when absent or expired.
	TakeNonce(ctx context.Context, address string) (*core.Challenge, error)

	// InvalidateToken marks a token ID as revoked until expiry elapses.
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error

	// IsTokenInvalidated checks whether a token ID has been revoked.
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
