package core

import "errors"

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrNonceNotFound    = errors.New("nonce not found or expired")
	ErrNonceMismatch    = errors.New("nonce mismatch")

	// Wallet connector errors.
	ErrNoProvider         = errors.New("no wallet provider available")
	ErrNoAccounts         = errors.New("no accounts returned by provider")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrUserRejected       = errors.New("request rejected by user")

	// Backend authenticator errors. Both are no-op signals, not failures:
	// the caller is expected to re-invoke later.
	ErrAuthInProgress  = errors.New("authentication already in progress")
	ErrAuthRateLimited = errors.New("authentication rate limited, try again later")
)
