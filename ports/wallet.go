package ports

import "context"

// AccountEvent is a provider-level change notification.
type AccountEvent struct {
	// Accounts is the new account list after an account change. Empty means
	// the user disconnected the wallet.
	Accounts []string

	// ChainChanged is set when the active chain switched. The account list
	// is not meaningful on a chain-change event.
	ChainChanged bool
	ChainID      string
}

// WalletProvider is the injected wallet capability. It stands in for the
// browser-injected provider object so the connector can be driven by a real
// key-backed signer or by a test fake.
type WalletProvider interface {
	// RequestAccounts prompts for account access and returns the granted
	// accounts, primary first. May return core.ErrUserRejected.
	RequestAccounts(ctx context.Context) ([]string, error)

	// Accounts returns the already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)

	// SignMessage signs a human-readable message for the given account
	// (personal_sign). Returns the 0x-prefixed signature.
	SignMessage(ctx context.Context, account, message string) (string, error)

	// SignTypedData signs EIP-712 typed data for the given account
	// (eth_signTypedData_v4). payload is the JSON-encoded typed data.
	SignTypedData(ctx context.Context, account string, payload []byte) (string, error)

	// Events exposes account and chain change notifications. The channel is
	// closed when the provider goes away.
	Events() <-chan AccountEvent
}

// Vault is durable client-side storage for the session token and the
// connected address, keyed by fixed names. Last writer wins; writes only
// happen inside the authenticator's single-flight guard.
type Vault interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Fixed vault keys. There is no versioning or migration scheme.
const (
	VaultKeyToken   = "jwt_token"
	VaultKeyAddress = "connected_address"
)
