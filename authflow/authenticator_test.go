package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsport/rinkside/adapters/vault"
	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
	"github.com/marketsport/rinkside/wallet"
)

const testPrivateKey = "4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"

type fakeBackend struct {
	server        *httptest.Server
	nonceCalls    atomic.Int64
	authCalls     atomic.Int64
	authStatus    int
	gate          chan struct{}
	issuedNonce   string
	issuedToken   string
	lastSignature string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		authStatus:  http.StatusOK,
		issuedNonce: "a1b2c3d4e5f6",
		issuedToken: "test-access-token",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/nonce", func(w http.ResponseWriter, r *http.Request) {
		b.nonceCalls.Add(1)
		if b.gate != nil {
			<-b.gate
		}
		json.NewEncoder(w).Encode(map[string]string{"nonce": b.issuedNonce})
	})
	mux.HandleFunc("/auth/authenticate", func(w http.ResponseWriter, r *http.Request) {
		b.authCalls.Add(1)
		var req authenticateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.lastSignature = req.Signature

		if b.authStatus != http.StatusOK {
			w.WriteHeader(b.authStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "too many requests"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": b.issuedToken})
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func newConnectedAuth(t *testing.T, backend *fakeBackend) (*Authenticator, *wallet.Connector, ports.Vault) {
	t.Helper()

	provider, err := wallet.NewLocalProvider(testPrivateKey)
	require.NoError(t, err)

	v := vault.NewMemoryVault()
	connector := wallet.NewConnector(provider, v)
	t.Cleanup(connector.Close)

	_, err = connector.Connect(context.Background())
	require.NoError(t, err)

	auth := NewAuthenticator(backend.server.URL, connector, v)
	return auth, connector, v
}

func TestAuthenticateHappyPath(t *testing.T) {
	backend := newFakeBackend(t)
	auth, connector, v := newConnectedAuth(t, backend)

	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
	assert.Equal(t, core.AuthDone, auth.Progress())
	assert.True(t, auth.Session().Authenticated)
	assert.NotEmpty(t, backend.lastSignature)

	stored, ok := v.Get(ports.VaultKeyToken)
	require.True(t, ok)
	assert.Equal(t, token, stored)
	owner, ok := v.Get(ports.VaultKeyAddress)
	require.True(t, ok)
	assert.Equal(t, connector.Address(), owner)
}

func TestAuthenticateIdempotentAfterDone(t *testing.T) {
	backend := newFakeBackend(t)
	auth, _, _ := newConnectedAuth(t, backend)

	first, err := auth.Authenticate(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, int64(1), backend.nonceCalls.Load())
	assert.Equal(t, int64(1), backend.authCalls.Load())
}

func TestAuthenticateSingleFlight(t *testing.T) {
	backend := newFakeBackend(t)
	backend.gate = make(chan struct{})
	auth, _, _ := newConnectedAuth(t, backend)

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Authenticate(context.Background())
			results <- err
		}()
	}

	// Hold the exchange open until every loser has bounced off the
	// in-progress guard, then let the winner through.
	for len(results) < callers-1 {
		time.Sleep(time.Millisecond)
	}
	close(backend.gate)
	wg.Wait()
	close(results)

	var succeeded, bounced int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, core.ErrAuthInProgress):
			bounced++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, bounced)
	assert.Equal(t, int64(1), backend.nonceCalls.Load())
	assert.Equal(t, int64(1), backend.authCalls.Load())

	// Losers re-invoke and converge on the same token with no new traffic.
	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
	assert.Equal(t, int64(1), backend.nonceCalls.Load())
}

func TestAuthenticateRateLimitedIsSticky(t *testing.T) {
	backend := newFakeBackend(t)
	backend.authStatus = http.StatusTooManyRequests
	auth, _, _ := newConnectedAuth(t, backend)

	_, err := auth.Authenticate(context.Background())
	require.ErrorIs(t, err, core.ErrAuthRateLimited)
	assert.Equal(t, core.AuthRateLimited, auth.Progress())

	// Stuck: further calls do not reach the backend.
	before := backend.nonceCalls.Load()
	_, err = auth.Authenticate(context.Background())
	require.ErrorIs(t, err, core.ErrAuthRateLimited)
	assert.Equal(t, before, backend.nonceCalls.Load())

	// Logout resets the machine and allows a fresh attempt.
	backend.authStatus = http.StatusOK
	auth.Logout()
	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
}

func TestAuthenticateFailureResetsToIdle(t *testing.T) {
	backend := newFakeBackend(t)
	backend.authStatus = http.StatusUnauthorized
	auth, _, _ := newConnectedAuth(t, backend)

	_, err := auth.Authenticate(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrAuthRateLimited)
	assert.Equal(t, core.AuthIdle, auth.Progress())
	assert.NotEmpty(t, auth.LastError())

	// Idle means a retry is allowed and can succeed.
	backend.authStatus = http.StatusOK
	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
}

func TestAuthenticateRestoresVaultedToken(t *testing.T) {
	backend := newFakeBackend(t)
	auth, connector, v := newConnectedAuth(t, backend)

	require.NoError(t, v.Set(ports.VaultKeyToken, "vaulted-token"))
	require.NoError(t, v.Set(ports.VaultKeyAddress, connector.Address()))

	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vaulted-token", token)
	assert.Zero(t, backend.nonceCalls.Load())
}

func TestAuthenticateRejectsTokenOwnedByOtherAddress(t *testing.T) {
	backend := newFakeBackend(t)
	auth, _, v := newConnectedAuth(t, backend)

	// A token minted for a different wallet must not be reused.
	require.NoError(t, v.Set(ports.VaultKeyToken, "someone-elses-token"))
	require.NoError(t, v.Set(ports.VaultKeyAddress, "0x000000000000000000000000000000000000dead"))

	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
	assert.Equal(t, int64(1), backend.nonceCalls.Load())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestAccountSwitchInvalidatesDoneState(t *testing.T) {
	backend := newFakeBackend(t)

	provider, err := wallet.NewLocalProvider(testPrivateKey)
	require.NoError(t, err)
	v := vault.NewMemoryVault()
	connector := wallet.NewConnector(provider, v)
	t.Cleanup(connector.Close)
	_, err = connector.Connect(context.Background())
	require.NoError(t, err)

	auth := NewAuthenticator(backend.server.URL, connector, v)
	first, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, "test-access-token", first)
	require.Equal(t, int64(1), backend.nonceCalls.Load())

	// The provider switches to another account without reconnect or logout.
	other := "0x00000000000000000000000000000000000Beef1"
	provider.EmitAccountsChanged([]string{other})
	waitFor(t, func() bool {
		return connector.Address() == "0x00000000000000000000000000000000000beef1"
	})

	// The first account's token must not be served; a fresh exchange runs
	// for the new address (and fails here, since the key cannot sign for
	// it), never silently reusing the cached token.
	token, err := auth.Authenticate(context.Background())
	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Equal(t, int64(2), backend.nonceCalls.Load())
	assert.Equal(t, core.AuthIdle, auth.Progress())
	assert.False(t, auth.Session().Authenticated)
}

func TestDisconnectInvalidatesDoneState(t *testing.T) {
	backend := newFakeBackend(t)

	provider, err := wallet.NewLocalProvider(testPrivateKey)
	require.NoError(t, err)
	v := vault.NewMemoryVault()
	connector := wallet.NewConnector(provider, v)
	t.Cleanup(connector.Close)
	_, err = connector.Connect(context.Background())
	require.NoError(t, err)

	auth := NewAuthenticator(backend.server.URL, connector, v)
	_, err = auth.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), backend.nonceCalls.Load())

	// Provider-side disconnect clears the wallet session and the vault.
	provider.EmitAccountsChanged(nil)
	waitFor(t, func() bool { return !connector.Connected() })

	_, err = auth.Authenticate(context.Background())
	assert.ErrorIs(t, err, core.ErrWalletNotConnected)

	// Reconnecting the same account starts a fresh exchange: the old
	// in-memory token died with its vault copy.
	_, err = connector.Connect(context.Background())
	require.NoError(t, err)

	token, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)
	assert.Equal(t, int64(2), backend.nonceCalls.Load())
}

func TestAuthenticateRequiresConnectedWallet(t *testing.T) {
	backend := newFakeBackend(t)

	provider, err := wallet.NewLocalProvider(testPrivateKey)
	require.NoError(t, err)
	connector := wallet.NewConnector(provider, vault.NewMemoryVault())
	t.Cleanup(connector.Close)

	auth := NewAuthenticator(backend.server.URL, connector, vault.NewMemoryVault())
	_, err = auth.Authenticate(context.Background())
	require.ErrorIs(t, err, core.ErrWalletNotConnected)
}

func TestLogoutClearsVaultedToken(t *testing.T) {
	backend := newFakeBackend(t)
	auth, _, v := newConnectedAuth(t, backend)

	_, err := auth.Authenticate(context.Background())
	require.NoError(t, err)

	auth.Logout()
	_, ok := v.Get(ports.VaultKeyToken)
	assert.False(t, ok)
	assert.Equal(t, core.AuthIdle, auth.Progress())
	assert.False(t, auth.Session().Authenticated)
}
