package trading

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigner = "0x90f8bf6a479f320ead074411a4b0e7944ea8c9c1"

func fixedClock() time.Time {
	return time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func TestBuildLimitOrder(t *testing.T) {
	builder := NewBuilder(WithBuilderClock(fixedClock))

	order, err := builder.Build(OrderParams{
		TokenID: "123456",
		Side:    Buy,
		Type:    Limit,
		Price:   decimal.RequireFromString("0.45"),
		Size:    decimal.RequireFromString("10"),
	}, testSigner)
	require.NoError(t, err)

	assert.Equal(t, "123456", order.TokenID.String())
	// 10 shares in wei.
	assert.Equal(t, "10000000000000000000", order.MakerAmount.String())
	// 0.45 * 10 USDC in wei.
	assert.Equal(t, "4500000000000000000", order.TakerAmount.String())
	assert.Equal(t, common.HexToAddress(testSigner), order.Maker)
	assert.Equal(t, common.HexToAddress(testSigner), order.Signer)
	assert.Equal(t, common.Address{}, order.Taker)
	assert.Equal(t, uint8(Buy), order.Side)
	assert.Equal(t, uint8(0), order.SignatureType)
	assert.Equal(t, fixedClock().UnixMilli(), order.Salt.Int64())
	assert.Equal(t, fixedClock().Add(24*time.Hour).Unix(), order.Expiration.Int64())
}

func TestBuildWithFunderSplitsMakerAndSigner(t *testing.T) {
	funder := common.HexToAddress("0x000000000000000000000000000000000000f00d")
	builder := NewBuilder(WithBuilderClock(fixedClock), WithFunder(funder))

	order, err := builder.Build(OrderParams{
		TokenID: "1",
		Side:    Sell,
		Type:    Limit,
		Price:   decimal.RequireFromString("0.6"),
		Size:    decimal.RequireFromString("5"),
	}, testSigner)
	require.NoError(t, err)

	assert.Equal(t, funder, order.Maker)
	assert.Equal(t, common.HexToAddress(testSigner), order.Signer)
}

func TestBuildMarketOrderUsesAggressivePricing(t *testing.T) {
	builder := NewBuilder(WithBuilderClock(fixedClock))

	buy, err := builder.Build(OrderParams{
		TokenID: "1",
		Side:    Buy,
		Type:    Market,
		Amount:  decimal.RequireFromString("100"),
	}, testSigner)
	require.NoError(t, err)
	// 100 * 0.99 USDC in wei.
	assert.Equal(t, "99000000000000000000", buy.TakerAmount.String())

	sell, err := builder.Build(OrderParams{
		TokenID: "1",
		Side:    Sell,
		Type:    Market,
		Amount:  decimal.RequireFromString("100"),
	}, testSigner)
	require.NoError(t, err)
	// 100 * 0.01 USDC in wei.
	assert.Equal(t, "1000000000000000000", sell.TakerAmount.String())
}

func TestBuildValidation(t *testing.T) {
	builder := NewBuilder(WithBuilderClock(fixedClock))

	_, err := builder.Build(OrderParams{Side: Buy, Type: Limit}, testSigner)
	assert.ErrorIs(t, err, ErrMissingTokenID)

	_, err = builder.Build(OrderParams{TokenID: "1", Type: Limit}, testSigner)
	assert.ErrorIs(t, err, ErrMissingPrice)

	_, err = builder.Build(OrderParams{TokenID: "1", Type: Market}, testSigner)
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = builder.Build(OrderParams{
		TokenID: "not-a-number",
		Type:    Limit,
		Price:   decimal.RequireFromString("0.5"),
		Size:    decimal.RequireFromString("1"),
	}, testSigner)
	assert.Error(t, err)
}
