package actions

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

// walletAddress is optional here: it falls back to the configured wallet and
// its absence is reported as a precondition failure, not an extraction one.
var orderSchema = extract.MustCompileSchema("create_order", `{
  "type": "object",
  "properties": {
    "srcChainId": {"type": "integer"},
    "dstChainId": {"type": "integer"},
    "srcTokenAddress": {"type": "string"},
    "dstTokenAddress": {"type": "string"},
    "amount": {"type": "string"},
    "walletAddress": {"type": "string"},
    "preset": {"type": "string", "enum": ["fast", "medium", "slow"]},
    "takingFeeBps": {"type": "integer"},
    "takingFeeReceiver": {"type": "string"}
  },
  "required": ["srcChainId", "dstChainId", "srcTokenAddress", "dstTokenAddress", "amount"]
}`)

type orderParams struct {
	quoteParams
	Preset            types.Preset `json:"preset,omitempty"`
	TakingFeeBps      *int         `json:"takingFeeBps,omitempty"`
	TakingFeeReceiver *string      `json:"takingFeeReceiver,omitempty"`
}

// CreateOrder creates a cross-chain swap order from a fresh quote
type CreateOrder struct {
	definition
}

// NewCreateOrder creates the CREATE_ORDER action
func NewCreateOrder() *CreateOrder {
	return &CreateOrder{definition{
		name:        "CREATE_ORDER",
		similes:     []string{"create order", "place order", "swap", "execute swap"},
		description: "Create a cross-chain swap order using 1inch",
		examples: [][]Example{{
			{User: "{{user1}}", Text: "Create an order to swap 1000 DAI from Ethereum to USDC on Polygon"},
			{User: "{{agentName}}", Text: "I'll create a cross-chain swap order for you.", Action: "CREATE_ORDER"},
		}},
		keywords: []string{"create order", "create an order", "place order", "place an order", "order to swap", "swap", "execute"},
		schema:   orderSchema,
	}}
}

// Validate implements Action
func (a *CreateOrder) Validate(text string) bool {
	return a.matchesKeyword(text)
}

// Handle implements Action
func (a *CreateOrder) Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) bool {
	return run(ctx, rt, a.name, "creating order", cb, func(ctx context.Context, log logrus.FieldLogger, p *provider.Provider) (Response, error) {
		var params orderParams
		if err := extractParams(ctx, rt, p, "Extract order parameters from: "+msg.Text, a.schema, &params); err != nil {
			return Response{}, err
		}

		wallet := params.WalletAddress
		if wallet == "" {
			wallet = p.Config().WalletAddress
		}
		if wallet == "" {
			return Response{}, apperrors.Precondition("Wallet address is required for creating orders")
		}

		quoteReq := params.toQuoteParams(wallet)
		quoteReq.EnableEstimate = true
		quote, err := p.GetQuote(ctx, quoteReq)
		if err != nil {
			return Response{}, err
		}

		opts := types.OrderParams{
			QuoteParams:       quoteReq,
			Preset:            params.Preset,
			TakingFeeBps:      params.TakingFeeBps,
			TakingFeeReceiver: params.TakingFeeReceiver,
		}.Options()

		log.WithFields(logrus.Fields{
			"quote_id": quote.QuoteID,
			"preset":   opts.Preset,
			"with_fee": opts.Fee != nil,
		}).Info("creating order")

		order, err := p.CreateOrder(ctx, quote, opts)
		if err != nil {
			return Response{}, err
		}

		return Response{
			Text:    formatOrder(params.quoteParams, quote, order),
			Content: map[string]any{"order": order},
		}, nil
	})
}

func formatOrder(params quoteParams, quote *types.Quote, order *types.Order) string {
	return fmt.Sprintf(`Order created successfully:
- Order ID: %s
- From: %s tokens on chain %d
- To: Expected %s tokens on chain %d
- Status: Pending`,
		order.OrderHash,
		params.Amount, params.SrcChainID,
		quote.DstAmount, params.DstChainID)
}
