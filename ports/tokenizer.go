package ports

import "github.com/marketsport/rinkside/core"

// Tokenizer converts between sessions and bearer tokens
type Tokenizer interface {
	// SessionToToken issues a signed access token for a session.
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession parses and validates an access token.
	TokenToSession(token string) (*core.Session, error)

	// VerifySignedMessage checks that signature was produced over message by
	// the private key of address (personal_sign semantics).
	VerifySignedMessage(message, signature, address string) error
}
