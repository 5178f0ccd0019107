package trading

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// orderType is the CTF Exchange order struct layout.
var orderType = []apitypes.Type{
	{Name: "salt", Type: "uint256"},
	{Name: "maker", Type: "address"},
	{Name: "signer", Type: "address"},
	{Name: "taker", Type: "address"},
	{Name: "tokenId", Type: "uint256"},
	{Name: "makerAmount", Type: "uint256"},
	{Name: "takerAmount", Type: "uint256"},
	{Name: "expiration", Type: "uint256"},
	{Name: "nonce", Type: "uint256"},
	{Name: "feeRateBps", Type: "uint256"},
	{Name: "side", Type: "uint8"},
	{Name: "signatureType", Type: "uint8"},
}

// TypedData renders an order as the EIP-712 typed data the CTF Exchange
// verifies against: domain "Polymarket CTF Exchange" v1 with the exchange
// contract on the builder's chain.
func (b *Builder) TypedData(order *Order) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": orderType,
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              "Polymarket CTF Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(b.chainID),
			VerifyingContract: b.exchange.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"salt":          (*math.HexOrDecimal256)(order.Salt),
			"maker":         order.Maker.Hex(),
			"signer":        order.Signer.Hex(),
			"taker":         order.Taker.Hex(),
			"tokenId":       (*math.HexOrDecimal256)(order.TokenID),
			"makerAmount":   (*math.HexOrDecimal256)(order.MakerAmount),
			"takerAmount":   (*math.HexOrDecimal256)(order.TakerAmount),
			"expiration":    (*math.HexOrDecimal256)(order.Expiration),
			"nonce":         (*math.HexOrDecimal256)(order.Nonce),
			"feeRateBps":    (*math.HexOrDecimal256)(order.FeeRateBps),
			"side":          (*math.HexOrDecimal256)(new(big.Int).SetUint64(uint64(order.Side))),
			"signatureType": (*math.HexOrDecimal256)(new(big.Int).SetUint64(uint64(order.SignatureType))),
		},
	}
}
