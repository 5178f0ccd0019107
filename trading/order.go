// Package trading builds, signs and submits Polymarket CTF Exchange
// orders. Signing goes through the wallet connector as EIP-712 typed data;
// order matching, risk and settlement stay with the external backend.
package trading

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// OrderType selects limit or market execution.
type OrderType int

const (
	Limit OrderType = iota
	Market
)

const (
	// DefaultChainID is the Polygon mainnet chain ID.
	DefaultChainID = 137

	// defaultExpiry is how long a signed order stays valid.
	defaultExpiry = 24 * time.Hour

	// signatureTypeEOA marks a plain EIP-712 EOA signature.
	signatureTypeEOA = 0
)

// CTFExchangeAddress is the CTF Exchange contract on Polygon.
var CTFExchangeAddress = common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E")

// Market orders cross the book with aggressive limit prices.
var (
	marketBuyPrice  = decimal.RequireFromString("0.99")
	marketSellPrice = decimal.RequireFromString("0.01")
)

var weiMultiplier = decimal.New(1, 18)

var (
	ErrMissingTokenID = errors.New("token id is required")
	ErrMissingPrice   = errors.New("price and size are required for limit orders")
	ErrMissingAmount  = errors.New("amount is required for market orders")
)

// OrderParams is the user-facing order request.
type OrderParams struct {
	TokenID string
	Side    Side
	Type    OrderType

	// Limit orders: price per share and share count.
	Price decimal.Decimal
	Size  decimal.Decimal

	// Market orders: total amount to cross the book with.
	Amount decimal.Decimal
}

// Order is the exchange-level order struct that gets hashed and signed.
type Order struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8
	SignatureType uint8
}

// Builder assembles signable orders for one signer. When a funder (proxy
// wallet) address is configured it becomes the order's maker, with the EOA
// kept as signer; otherwise the EOA fills both roles.
type Builder struct {
	chainID  int64
	exchange common.Address
	funder   *common.Address
	now      func() time.Time
}

// BuilderOption configures the builder.
type BuilderOption func(*Builder)

// WithChainID sets the target chain.
func WithChainID(chainID int64) BuilderOption {
	return func(b *Builder) { b.chainID = chainID }
}

// WithExchange sets the exchange contract address.
func WithExchange(exchange common.Address) BuilderOption {
	return func(b *Builder) { b.exchange = exchange }
}

// WithFunder attributes orders to a funding proxy wallet.
func WithFunder(funder common.Address) BuilderOption {
	return func(b *Builder) { b.funder = &funder }
}

// WithBuilderClock sets the time source for salts and expirations.
func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates an order builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		chainID:  DefaultChainID,
		exchange: CTFExchangeAddress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build converts order params into a signable exchange order for the given
// signing address.
func (b *Builder) Build(params OrderParams, signer string) (*Order, error) {
	if params.TokenID == "" {
		return nil, ErrMissingTokenID
	}

	price, size, err := resolvePricing(params)
	if err != nil {
		return nil, err
	}

	tokenID, ok := new(big.Int).SetString(params.TokenID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid token id: %q", params.TokenID)
	}

	sizeWei := size.Mul(weiMultiplier).BigInt()
	costWei := price.Mul(size).Mul(weiMultiplier).BigInt()

	// BUY: tokens received against USDC paid; SELL: tokens sent against
	// USDC received. Either way the size leg is the maker amount.
	makerAmount, takerAmount := sizeWei, costWei

	now := b.now()
	signerAddr := common.HexToAddress(strings.TrimSpace(signer))
	maker := signerAddr
	if b.funder != nil {
		maker = *b.funder
	}

	return &Order{
		Salt:          big.NewInt(now.UnixMilli()),
		Maker:         maker,
		Signer:        signerAddr,
		Taker:         common.Address{},
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    big.NewInt(now.Add(defaultExpiry).Unix()),
		Nonce:         big.NewInt(0),
		FeeRateBps:    big.NewInt(0),
		Side:          uint8(params.Side),
		SignatureType: signatureTypeEOA,
	}, nil
}

// resolvePricing validates the params and yields the effective price and
// size. Market orders trade the full amount at an aggressive price.
func resolvePricing(params OrderParams) (price, size decimal.Decimal, err error) {
	switch params.Type {
	case Limit:
		if !params.Price.IsPositive() || !params.Size.IsPositive() {
			return decimal.Zero, decimal.Zero, ErrMissingPrice
		}
		return params.Price, params.Size, nil
	case Market:
		if !params.Amount.IsPositive() {
			return decimal.Zero, decimal.Zero, ErrMissingAmount
		}
		if params.Side == Buy {
			return marketBuyPrice, params.Amount, nil
		}
		return marketSellPrice, params.Amount, nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid order type: %d", params.Type)
	}
}
