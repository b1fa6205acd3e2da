package actions

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

var quoteSchema = extract.MustCompileSchema("get_quote", `{
  "type": "object",
  "properties": {
    "srcChainId": {"type": "integer"},
    "dstChainId": {"type": "integer"},
    "srcTokenAddress": {"type": "string"},
    "dstTokenAddress": {"type": "string"},
    "amount": {"type": "string"},
    "walletAddress": {"type": "string"}
  },
  "required": ["srcChainId", "dstChainId", "srcTokenAddress", "dstTokenAddress", "amount"]
}`)

type quoteParams struct {
	SrcChainID      int    `json:"srcChainId"`
	DstChainID      int    `json:"dstChainId"`
	SrcTokenAddress string `json:"srcTokenAddress"`
	DstTokenAddress string `json:"dstTokenAddress"`
	Amount          string `json:"amount"`
	WalletAddress   string `json:"walletAddress,omitempty"`
}

// toQuoteParams normalizes token addresses and picks the wallet
func (q quoteParams) toQuoteParams(wallet string) types.QuoteParams {
	return types.QuoteParams{
		SrcChainID:      types.NetworkID(q.SrcChainID),
		DstChainID:      types.NetworkID(q.DstChainID),
		SrcTokenAddress: provider.FormatTokenAddress(q.SrcTokenAddress),
		DstTokenAddress: provider.FormatTokenAddress(q.DstTokenAddress),
		Amount:          q.Amount,
		WalletAddress:   wallet,
	}
}

// GetQuote fetches a cross-chain swap quote
type GetQuote struct {
	definition
}

// NewGetQuote creates the GET_QUOTE action
func NewGetQuote() *GetQuote {
	return &GetQuote{definition{
		name:        "GET_QUOTE",
		similes:     []string{"quote", "price", "estimate", "swap quote", "cross-chain quote"},
		description: "Get a quote for cross-chain token swap using 1inch",
		examples: [][]Example{{
			{User: "{{user1}}", Text: "Get me a quote to swap 1000 DAI from Ethereum to native token on Gnosis chain"},
			{User: "{{agentName}}", Text: "I'll get you a quote for swapping 1000 DAI from Ethereum to native token on Gnosis chain.", Action: "GET_QUOTE"},
		}},
		keywords: []string{"quote", "price", "swap", "cross-chain", "1inch"},
		schema:   quoteSchema,
	}}
}

// Validate implements Action
func (a *GetQuote) Validate(text string) bool {
	return a.matchesKeyword(text)
}

// Handle implements Action
func (a *GetQuote) Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) bool {
	return run(ctx, rt, a.name, "getting quote", cb, func(ctx context.Context, log logrus.FieldLogger, p *provider.Provider) (Response, error) {
		var params quoteParams
		if err := extractParams(ctx, rt, p, "Extract swap parameters from: "+msg.Text, a.schema, &params); err != nil {
			return Response{}, err
		}

		wallet := params.WalletAddress
		if wallet == "" {
			wallet = p.Config().WalletAddress
		}
		if wallet == "" {
			wallet = types.ZeroAddress
		}

		log.WithFields(logrus.Fields{
			"src_chain": params.SrcChainID,
			"dst_chain": params.DstChainID,
			"amount":    params.Amount,
		}).Info("requesting quote")

		quote, err := p.GetQuote(ctx, params.toQuoteParams(wallet))
		if err != nil {
			return Response{}, err
		}

		return Response{
			Text:    formatQuote(params, quote),
			Content: map[string]any{"quote": quote},
		}, nil
	})
}

func formatQuote(params quoteParams, quote *types.Quote) string {
	return fmt.Sprintf(`Quote received:
- From: %s tokens on chain %d
- To: %s tokens on chain %d
- Estimated gas: %s
- Price impact: %s%%`,
		params.Amount, params.SrcChainID,
		quote.DstAmount, params.DstChainID,
		orUnknown(quote.GasLimit),
		quote.PriceImpact.String())
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
