package core

import (
	"fmt"
	"time"
)

// SignInMessage is the human-readable text a wallet signs to authenticate.
// The server and every client must agree on this template byte for byte,
// since signature recovery runs over the exact message.
const SignInMessage = "Sign this message to authenticate with Rinkside.\n\nAddress: %s\nNonce: %s"

// FormatSignInMessage renders the sign-in message for an address and nonce.
func FormatSignInMessage(address, nonce string) string {
	return fmt.Sprintf(SignInMessage, address, nonce)
}

// Challenge represents a pending authentication challenge
type Challenge struct {
	Address   string    // Lowercase wallet address the nonce was issued to
	Nonce     string    // Random nonce to be embedded in the signed message
	IssuedAt  time.Time // When the nonce was created
	ExpiresAt time.Time // When the nonce expires
}

// Expired reports whether the challenge is past its expiry.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session represents an authenticated user session
type Session struct {
	ID           string    // Unique session identifier, also the token JTI
	Address      string    // Lowercase wallet address of the user
	IssuedAt     time.Time // When the session was created
	AccessExpiry time.Time // When the access token expires
}

// WalletSession is the connection state owned by the wallet connector.
type WalletSession struct {
	Address   string // Lowercase hex address, empty when disconnected
	Connected bool
}

// AuthSession is the backend authentication state owned by the authenticator.
type AuthSession struct {
	Token         string // Opaque bearer token, empty when absent
	Authenticated bool
}

// AuthProgress tracks the process-wide authentication state machine.
// At most one challenge-response exchange may be in flight; Done and
// RateLimited are sticky until an explicit logout or disconnect.
type AuthProgress int

const (
	AuthIdle AuthProgress = iota
	AuthInProgress
	AuthDone
	AuthRateLimited
)

func (p AuthProgress) String() string {
	switch p {
	case AuthIdle:
		return "idle"
	case AuthInProgress:
		return "in_progress"
	case AuthDone:
		return "done"
	case AuthRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}
