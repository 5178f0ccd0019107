// Package wallet implements the wallet connector: connection state, signing
// and passive account-change handling over an injected provider capability.
package wallet

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
)

// Connector tracks the currently connected account and delegates signing to
// the provider. It owns the WalletSession exclusively; everything else
// reads it through Session().
type Connector struct {
	provider ports.WalletProvider
	vault    ports.Vault
	logger   *slog.Logger
	reload   func()

	mu      sync.RWMutex
	session core.WalletSession
	done    chan struct{}
}

// Option configures the connector.
type Option func(*Connector)

// WithLogger sets the connector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) { c.logger = logger }
}

// WithReloadHook sets the hook invoked on a chain change. The session model
// is not chain-aware, so a full reset is the simplest consistent reaction;
// in a browser this would be a page reload.
func WithReloadHook(reload func()) Option {
	return func(c *Connector) { c.reload = reload }
}

// NewConnector creates a connector and starts watching provider events.
// provider may be nil, in which case every operation fails with
// core.ErrNoProvider.
func NewConnector(provider ports.WalletProvider, vault ports.Vault, opts ...Option) *Connector {
	c := &Connector{
		provider: provider,
		vault:    vault,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if provider != nil {
		go c.watch()
	}
	return c
}

// CheckConnection queries already-authorized accounts without prompting and
// seeds the session, mirroring the page-load connection probe.
func (c *Connector) CheckConnection(ctx context.Context) error {
	if c.provider == nil {
		return core.ErrNoProvider
	}

	accounts, err := c.provider.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return nil
	}

	c.adoptAddress(strings.ToLower(accounts[0]))
	return nil
}

// Connect requests account access and returns the lowercase primary address.
func (c *Connector) Connect(ctx context.Context) (string, error) {
	if c.provider == nil {
		return "", core.ErrNoProvider
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", core.ErrNoAccounts
	}

	address := strings.ToLower(accounts[0])
	c.adoptAddress(address)
	return address, nil
}

// Disconnect clears the wallet session along with the persisted address and
// any cached session token, which is meaningless without its owning address.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	c.session = core.WalletSession{}
	c.mu.Unlock()

	if c.vault != nil {
		_ = c.vault.Delete(ports.VaultKeyAddress)
		_ = c.vault.Delete(ports.VaultKeyToken)
	}
}

// SignMessage signs a human-readable message with the connected account.
func (c *Connector) SignMessage(ctx context.Context, message string) (string, error) {
	address := c.Address()
	if address == "" {
		return "", core.ErrWalletNotConnected
	}
	return c.provider.SignMessage(ctx, address, message)
}

// SignTypedData signs EIP-712 typed data with the connected account.
func (c *Connector) SignTypedData(ctx context.Context, payload []byte) (string, error) {
	address := c.Address()
	if address == "" {
		return "", core.ErrWalletNotConnected
	}
	return c.provider.SignTypedData(ctx, address, payload)
}

// Session returns a copy of the current wallet session.
func (c *Connector) Session() core.WalletSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Address returns the connected lowercase address, or "".
func (c *Connector) Address() string {
	return c.Session().Address
}

// Connected reports whether a wallet is connected.
func (c *Connector) Connected() bool {
	return c.Session().Connected
}

// Close stops watching provider events.
func (c *Connector) Close() {
	close(c.done)
}

// adoptAddress installs a connected address. A cached token that belongs to
// a different address is dropped so it can never be presented for the new
// account.
func (c *Connector) adoptAddress(address string) {
	c.mu.Lock()
	c.session = core.WalletSession{Address: address, Connected: true}
	c.mu.Unlock()

	if c.vault == nil {
		return
	}
	if prev, ok := c.vault.Get(ports.VaultKeyAddress); ok && prev != address {
		_ = c.vault.Delete(ports.VaultKeyToken)
	}
	_ = c.vault.Set(ports.VaultKeyAddress, address)
}

// watch consumes provider account/chain change notifications.
func (c *Connector) watch() {
	events := c.provider.Events()
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Connector) handleEvent(ev ports.AccountEvent) {
	if ev.ChainChanged {
		c.logger.Info("chain changed, resetting session", "chain", ev.ChainID)
		c.Disconnect()
		if c.reload != nil {
			c.reload()
		}
		return
	}

	if len(ev.Accounts) == 0 {
		// User disconnected the wallet from the provider side.
		c.logger.Info("provider reported empty accounts, disconnecting")
		c.Disconnect()
		return
	}

	address := strings.ToLower(ev.Accounts[0])
	if address == c.Address() {
		return
	}
	c.logger.Info("account switched", "address", address)
	c.adoptAddress(address)
}
