package authflow

import (
	"context"
	"log/slog"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/wallet"
)

// SessionContext composes the wallet connector and the authenticator into a
// single session view. It is the one object UI layers talk to: connection
// state, auth state, and the combined connect-then-authenticate entry point.
type SessionContext struct {
	connector *wallet.Connector
	auth      *Authenticator
	logger    *slog.Logger
}

// NewSessionContext builds a session context over an existing connector and
// authenticator.
func NewSessionContext(connector *wallet.Connector, auth *Authenticator, logger *slog.Logger) *SessionContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionContext{connector: connector, auth: auth, logger: logger}
}

// Wallet returns the current wallet session.
func (s *SessionContext) Wallet() core.WalletSession {
	return s.connector.Session()
}

// Auth returns the current auth session.
func (s *SessionContext) Auth() core.AuthSession {
	return s.auth.Session()
}

// Ready reports whether the session has settled: false while an auth
// exchange is still in flight.
func (s *SessionContext) Ready() bool {
	return s.auth.Progress() != core.AuthInProgress
}

// Authenticated reports whether the wallet is connected and a backend token
// is held.
func (s *SessionContext) Authenticated() bool {
	return s.connector.Session().Connected && s.auth.Session().Authenticated
}

// Connect prompts the wallet and records the connected address.
func (s *SessionContext) Connect(ctx context.Context) (string, error) {
	return s.connector.Connect(ctx)
}

// ConnectAndAuthenticate connects the wallet and then runs backend
// authentication. An auth failure does not undo the connection: the address
// is returned and the auth error is logged and kept in LastAuthError, so the
// user ends up connected but unauthenticated, exactly as if the two steps
// had been taken separately.
func (s *SessionContext) ConnectAndAuthenticate(ctx context.Context) (string, error) {
	address, err := s.connector.Connect(ctx)
	if err != nil {
		return "", err
	}
	if _, err := s.auth.Authenticate(ctx); err != nil {
		s.logger.Warn("backend authentication failed after connect", "address", address, "error", err)
	}
	return address, nil
}

// Authenticate runs backend authentication for the connected wallet.
func (s *SessionContext) Authenticate(ctx context.Context) (string, error) {
	return s.auth.Authenticate(ctx)
}

// LastAuthError returns the message of the most recent failed auth exchange.
func (s *SessionContext) LastAuthError() string {
	return s.auth.LastError()
}

// Logout clears the auth state and disconnects the wallet.
func (s *SessionContext) Logout() {
	s.auth.Logout()
	s.connector.Disconnect()
}
