package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
)

// LocalProvider is an in-process wallet provider backed by an ECDSA private
// key. It lets the whole auth and trading flow run without a browser wallet
// and serves as the reference implementation of the provider capability.
type LocalProvider struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address

	mu     sync.Mutex
	events chan ports.AccountEvent
}

// NewLocalProvider creates a provider from a hex-encoded private key.
func NewLocalProvider(hexKey string) (*LocalProvider, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &LocalProvider{
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		events:     make(chan ports.AccountEvent, 4),
	}, nil
}

// AddressHex returns the provider's checksummed address.
func (p *LocalProvider) AddressHex() string {
	return p.address.Hex()
}

// RequestAccounts returns the single key-backed account. There is no user
// to reject the prompt.
func (p *LocalProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{p.address.Hex()}, nil
}

// Accounts returns the already-authorized accounts.
func (p *LocalProvider) Accounts(ctx context.Context) ([]string, error) {
	return []string{p.address.Hex()}, nil
}

// SignMessage signs message with personal_sign semantics (EIP-191 prefix)
// and returns a 0x-prefixed 65-byte signature with V in {27, 28}.
func (p *LocalProvider) SignMessage(ctx context.Context, account, message string) (string, error) {
	if !strings.EqualFold(account, p.address.Hex()) {
		return "", core.ErrWalletNotConnected
	}

	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, p.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

// SignTypedData signs EIP-712 typed data (eth_signTypedData_v4). payload is
// the JSON-encoded typed data structure.
func (p *LocalProvider) SignTypedData(ctx context.Context, account string, payload []byte) (string, error) {
	if !strings.EqualFold(account, p.address.Hex()) {
		return "", core.ErrWalletNotConnected
	}

	var typedData apitypes.TypedData
	if err := json.Unmarshal(payload, &typedData); err != nil {
		return "", fmt.Errorf("decode typed data: %w", err)
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", fmt.Errorf("hash typed data: %w", err)
	}

	sig, err := crypto.Sign(hash, p.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign typed data: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

// Events exposes the change-notification channel.
func (p *LocalProvider) Events() <-chan ports.AccountEvent {
	return p.events
}

// EmitAccountsChanged simulates a provider-level account change.
func (p *LocalProvider) EmitAccountsChanged(accounts []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events <- ports.AccountEvent{Accounts: accounts}
}

// EmitChainChanged simulates a provider-level chain switch.
func (p *LocalProvider) EmitChainChanged(chainID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events <- ports.AccountEvent{ChainChanged: true, ChainID: chainID}
}

var _ ports.WalletProvider = (*LocalProvider)(nil)
