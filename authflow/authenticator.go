// Package authflow implements the client side of the backend authentication
// flow: a process-wide single-flight challenge-response exchange and the
// session composition consumed by UI layers.
package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
	"github.com/marketsport/rinkside/wallet"
)

// Authenticator executes the two-step nonce/signature exchange against the
// backend and caches the resulting bearer token. It is a process-wide
// singleton: the AuthProgress guard ensures at most one exchange is in
// flight no matter how many callers invoke Authenticate concurrently, and
// at most one successful exchange happens per session lifetime.
type Authenticator struct {
	baseURL    string
	httpClient *http.Client
	connector  *wallet.Connector
	vault      ports.Vault
	logger     *slog.Logger

	mu         sync.Mutex
	progress   core.AuthProgress
	token      string
	tokenOwner string
	lastErr    string
}

// AuthOption configures the authenticator.
type AuthOption func(*Authenticator)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) AuthOption {
	return func(a *Authenticator) { a.httpClient = client }
}

// WithLogger sets the authenticator's logger.
func WithLogger(logger *slog.Logger) AuthOption {
	return func(a *Authenticator) { a.logger = logger }
}

// NewAuthenticator creates an authenticator against the given backend base
// URL (e.g. "https://api.example.com").
func NewAuthenticator(baseURL string, connector *wallet.Connector, vault ports.Vault, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		connector:  connector,
		vault:      vault,
		logger:     slog.Default(),
		progress:   core.AuthIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

type authenticateRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

type authenticateResponse struct {
	AccessToken string `json:"access_token"`
}

// exchangeError carries the backend status so the state machine can tell
// rate limiting apart from other failures.
type exchangeError struct {
	status int
	detail string
}

func (e *exchangeError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.status, e.detail)
	}
	return fmt.Sprintf("backend returned %d", e.status)
}

func (e *exchangeError) rateLimited() bool {
	return e.status == http.StatusTooManyRequests || e.status == http.StatusServiceUnavailable
}

// Authenticate runs the challenge-response exchange, or returns immediately
// when the state machine says no work is needed:
//
//   - Done: the cached token, restored from the vault if the in-memory copy
//     was lost. No network traffic. When the connected account no longer
//     owns the token (account switch, or a disconnect dropped the vault
//     copy), the state resets to idle and a fresh exchange runs instead.
//   - InProgress: core.ErrAuthInProgress; the caller re-invokes later.
//   - RateLimited: core.ErrAuthRateLimited; sticky until Logout.
//
// Any other failure resets the state to idle and is returned so callers can
// chain logic; a previously cached token is never cleared on failure.
func (a *Authenticator) Authenticate(ctx context.Context) (string, error) {
	session := a.connector.Session()
	if !session.Connected || session.Address == "" {
		return "", core.ErrWalletNotConnected
	}

	a.mu.Lock()
	if a.progress == core.AuthDone {
		token := a.token
		if a.vault != nil {
			// The durable copy is authoritative: the connector drops it on
			// disconnect and on an account switch, and a token issued to
			// the previous account must not outlive it in memory.
			token = a.cachedToken(session.Address)
		} else if a.tokenOwner != session.Address {
			token = ""
		}
		if token != "" {
			a.token = token
			a.tokenOwner = session.Address
			a.mu.Unlock()
			return token, nil
		}
		a.token = ""
		a.tokenOwner = ""
		a.progress = core.AuthIdle
	}

	switch a.progress {
	case core.AuthInProgress:
		a.mu.Unlock()
		return "", core.ErrAuthInProgress

	case core.AuthRateLimited:
		a.mu.Unlock()
		return "", core.ErrAuthRateLimited
	}

	// Idle: a vaulted token for this exact address skips the exchange.
	if token := a.cachedToken(session.Address); token != "" {
		a.token = token
		a.tokenOwner = session.Address
		a.progress = core.AuthDone
		a.mu.Unlock()
		return token, nil
	}

	a.progress = core.AuthInProgress
	a.lastErr = ""
	a.mu.Unlock()

	token, err := a.exchange(ctx, session.Address)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.lastErr = err.Error()
		var xerr *exchangeError
		if errors.As(err, &xerr) && xerr.rateLimited() {
			a.progress = core.AuthRateLimited
			return "", fmt.Errorf("%w: %s", core.ErrAuthRateLimited, xerr.detail)
		}
		// Back to idle so the caller may retry. A stale vault token, if any,
		// is preserved optimistically.
		a.progress = core.AuthIdle
		return "", err
	}

	a.token = token
	a.tokenOwner = session.Address
	a.progress = core.AuthDone
	if a.vault != nil {
		_ = a.vault.Set(ports.VaultKeyToken, token)
		_ = a.vault.Set(ports.VaultKeyAddress, session.Address)
	}
	return token, nil
}

// Logout removes the persisted token, clears the in-memory token and resets
// the state machine to idle.
func (a *Authenticator) Logout() {
	a.mu.Lock()
	a.token = ""
	a.tokenOwner = ""
	a.progress = core.AuthIdle
	a.lastErr = ""
	a.mu.Unlock()

	if a.vault != nil {
		_ = a.vault.Delete(ports.VaultKeyToken)
	}
}

// Progress returns the current state of the auth state machine.
func (a *Authenticator) Progress() core.AuthProgress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

// Session returns the current auth session view.
func (a *Authenticator) Session() core.AuthSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.AuthSession{
		Token:         a.token,
		Authenticated: a.progress == core.AuthDone && a.token != "",
	}
}

// LastError returns the human-readable message of the last failed exchange.
func (a *Authenticator) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// cachedToken returns the vaulted token only when its owning address
// matches the connected address. A token produced for address B is never
// valid for address A. Caller must hold the mutex.
func (a *Authenticator) cachedToken(address string) string {
	if a.vault == nil {
		return ""
	}
	token, ok := a.vault.Get(ports.VaultKeyToken)
	if !ok || token == "" {
		return ""
	}
	owner, ok := a.vault.Get(ports.VaultKeyAddress)
	if !ok || owner != address {
		return ""
	}
	return token
}

// exchange performs the two-step nonce/signature round trip.
func (a *Authenticator) exchange(ctx context.Context, address string) (string, error) {
	nonceURL := fmt.Sprintf("%s/auth/nonce?address=%s", a.baseURL, url.QueryEscape(address))
	var nonce nonceResponse
	if err := a.doJSON(ctx, http.MethodGet, nonceURL, nil, &nonce); err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	message := core.FormatSignInMessage(address, nonce.Nonce)
	signature, err := a.connector.SignMessage(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	body := authenticateRequest{
		Address:   address,
		Signature: signature,
		Message:   message,
	}
	var resp authenticateResponse
	if err := a.doJSON(ctx, http.MethodPost, a.baseURL+"/auth/authenticate", body, &resp); err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}

	a.logger.Info("authenticated with backend", "address", address)
	return resp.AccessToken, nil
}

func (a *Authenticator) doJSON(ctx context.Context, method, rawURL string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		xerr := &exchangeError{status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil {
			xerr.detail = detail.Detail
		}
		return xerr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
