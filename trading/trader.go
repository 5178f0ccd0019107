package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/wallet"
)

// TokenSource supplies a backend bearer token. *authflow.Authenticator
// satisfies it.
type TokenSource interface {
	Authenticate(ctx context.Context) (string, error)
}

// Trader signs orders with the connected wallet and submits them to the
// trading backend.
type Trader struct {
	builder    *Builder
	connector  *wallet.Connector
	tokens     TokenSource
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// TraderOption configures the trader.
type TraderOption func(*Trader)

// WithTraderHTTPClient sets a custom HTTP client.
func WithTraderHTTPClient(client *http.Client) TraderOption {
	return func(t *Trader) { t.httpClient = client }
}

// WithTraderLogger sets the trader's logger.
func WithTraderLogger(logger *slog.Logger) TraderOption {
	return func(t *Trader) { t.logger = logger }
}

// NewTrader creates a trader submitting to the given backend base URL.
func NewTrader(baseURL string, builder *Builder, connector *wallet.Connector, tokens TokenSource, opts ...TraderOption) *Trader {
	t := &Trader{
		builder:    builder,
		connector:  connector,
		tokens:     tokens,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PlacedOrder is the backend's acknowledgement of a submitted order.
type PlacedOrder struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// wireOrder is the JSON shape of a signed order. uint256 values travel as
// decimal strings.
type wireOrder struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType uint8  `json:"signatureType"`
}

type placeOrderRequest struct {
	Order     wireOrder `json:"order"`
	Signature string    `json:"signature"`
}

// PlaceOrder builds an order from the params, signs it through the wallet
// connector and submits it. The bearer token comes from the token source,
// so a cached session is reused and the call fails fast while another auth
// exchange is in flight.
func (t *Trader) PlaceOrder(ctx context.Context, params OrderParams) (*PlacedOrder, error) {
	session := t.connector.Session()
	if !session.Connected {
		return nil, core.ErrWalletNotConnected
	}

	token, err := t.tokens.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session token: %w", err)
	}

	order, err := t.builder.Build(params, session.Address)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(t.builder.TypedData(order))
	if err != nil {
		return nil, fmt.Errorf("encode typed data: %w", err)
	}
	signature, err := t.connector.SignTypedData(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("sign order: %w", err)
	}

	placed, err := t.submit(ctx, token, order, signature)
	if err != nil {
		return nil, err
	}

	t.logger.Info("order placed",
		"tokenId", params.TokenID,
		"side", params.Side.String(),
		"orderId", placed.OrderID,
	)
	return placed, nil
}

func (t *Trader) submit(ctx context.Context, token string, order *Order, signature string) (*PlacedOrder, error) {
	body, err := json.Marshal(placeOrderRequest{
		Order:     toWire(order),
		Signature: signature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/polymarket/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			return nil, fmt.Errorf("order rejected (%d): %s", resp.StatusCode, detail.Detail)
		}
		return nil, fmt.Errorf("order rejected (%d)", resp.StatusCode)
	}

	var placed PlacedOrder
	if err := json.Unmarshal(raw, &placed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &placed, nil
}

func toWire(order *Order) wireOrder {
	return wireOrder{
		Salt:          order.Salt.String(),
		Maker:         strings.ToLower(order.Maker.Hex()),
		Signer:        strings.ToLower(order.Signer.Hex()),
		Taker:         strings.ToLower(order.Taker.Hex()),
		TokenID:       order.TokenID.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		Side:          Side(order.Side).String(),
		SignatureType: order.SignatureType,
	}
}
