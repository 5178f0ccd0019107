package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsport/rinkside/adapters/store"
	"github.com/marketsport/rinkside/adapters/tokenizer"
	"github.com/marketsport/rinkside/core"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewAuthService(tokenizer.NewJWTTokenizer(signKey), store.NewMemoryStore(), nil, nil)
}

func newWallet(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[64] += 27
	return hexutil.Encode(sig)
}

func TestCreateNonce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nonce, err := svc.CreateNonce(ctx, "0x90F8bf6a479f320ead074411a4B0e7944Ea8c9C1")
	require.NoError(t, err)
	assert.Len(t, nonce, 64)

	// a new nonce replaces the old one
	nonce2, err := svc.CreateNonce(ctx, "0x90F8bf6a479f320ead074411a4B0e7944Ea8c9C1")
	require.NoError(t, err)
	assert.NotEqual(t, nonce, nonce2)

	_, err = svc.CreateNonce(ctx, "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)

	message := core.FormatSignInMessage(address, nonce)
	token, err := svc.Authenticate(ctx, address, signMessage(t, key, message), message)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := svc.ValidateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, address, session.Address)
}

func TestAuthenticateNonceIsSingleUse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)

	message := core.FormatSignInMessage(address, nonce)
	sig := signMessage(t, key, message)

	_, err = svc.Authenticate(ctx, address, sig, message)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, address, sig, message)
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestAuthenticateRejectsWrongSigner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, address := newWallet(t)
	otherKey, _ := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)

	message := core.FormatSignInMessage(address, nonce)
	_, err = svc.Authenticate(ctx, address, signMessage(t, otherKey, message), message)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestAuthenticateRejectsForeignNonce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	_, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)

	// signed message embeds a nonce that was never issued
	message := core.FormatSignInMessage(address, "deadbeef")
	_, err = svc.Authenticate(ctx, address, signMessage(t, key, message), message)
	assert.ErrorIs(t, err, core.ErrNonceMismatch)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)
	message := core.FormatSignInMessage(address, nonce)
	token, err := svc.Authenticate(ctx, address, signMessage(t, key, message), message)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ValidateAccessToken(ctx, token)
	assert.ErrorIs(t, err, core.ErrTokenInvalidated)
}

func TestConfiguredNonceTTLExpiresNonces(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	svc := NewAuthService(
		tokenizer.NewJWTTokenizer(signKey), store.NewMemoryStore(), nil, nil,
		WithNonceTTL(time.Millisecond),
	)
	ctx := context.Background()
	key, address := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	message := core.FormatSignInMessage(address, nonce)
	_, err = svc.Authenticate(ctx, address, signMessage(t, key, message), message)
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestConfiguredAccessTTLSetsTokenExpiry(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	svc := NewAuthService(
		tokenizer.NewJWTTokenizer(signKey), store.NewMemoryStore(), nil, nil,
		WithAccessTTL(2*time.Hour),
	)
	ctx := context.Background()
	key, address := newWallet(t)

	nonce, err := svc.CreateNonce(ctx, address)
	require.NoError(t, err)
	message := core.FormatSignInMessage(address, nonce)
	token, err := svc.Authenticate(ctx, address, signMessage(t, key, message), message)
	require.NoError(t, err)

	session, err := svc.ValidateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), session.AccessExpiry, time.Minute)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ValidateAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
