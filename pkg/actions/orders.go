package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/parser"
	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

const hashPrefixLen = 10

// GetActiveOrders lists the first page of active orders
type GetActiveOrders struct {
	definition
}

// NewGetActiveOrders creates the GET_ACTIVE_ORDERS action
func NewGetActiveOrders() *GetActiveOrders {
	return &GetActiveOrders{definition{
		name:        "GET_ACTIVE_ORDERS",
		similes:     []string{"active orders", "my orders", "pending orders", "order status"},
		description: "Get active orders from 1inch",
		examples: [][]Example{{
			{User: "{{user1}}", Text: "Show me my active orders"},
			{User: "{{agentName}}", Text: "I'll fetch your active orders from 1inch.", Action: "GET_ACTIVE_ORDERS"},
		}},
		keywords: []string{"active orders", "my orders", "pending orders", "order status"},
	}}
}

// Validate implements Action
func (a *GetActiveOrders) Validate(text string) bool {
	return a.matchesKeyword(text)
}

// Handle implements Action. Pagination is fixed to the first page of ten.
func (a *GetActiveOrders) Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) bool {
	return run(ctx, rt, a.name, "getting active orders", cb, func(ctx context.Context, log logrus.FieldLogger, p *provider.Provider) (Response, error) {
		orders, err := p.GetActiveOrders(ctx, types.PageParams{Page: types.DefaultPage, Limit: types.DefaultLimit})
		if err != nil {
			return Response{}, err
		}

		text := "No active orders found."
		if len(orders.Items) > 0 {
			text = fmt.Sprintf("Found %d active orders:\n%s", len(orders.Items), formatOrderList(orders.Items))
		}
		return Response{Text: text, Content: map[string]any{"orders": orders}}, nil
	})
}

var makerSchema = extract.MustCompileSchema("get_orders_by_maker", `{
  "type": "object",
  "properties": {
    "address": {"type": "string"},
    "page": {"type": "integer"},
    "limit": {"type": "integer"}
  },
  "required": ["address"]
}`)

type makerParams struct {
	Address string `json:"address"`
	Page    int    `json:"page,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// GetOrdersByMaker lists the orders created by an address
type GetOrdersByMaker struct {
	definition
}

// NewGetOrdersByMaker creates the GET_ORDERS_BY_MAKER action
func NewGetOrdersByMaker() *GetOrdersByMaker {
	return &GetOrdersByMaker{definition{
		name:        "GET_ORDERS_BY_MAKER",
		similes:     []string{"orders by address", "user orders", "maker orders"},
		description: "Get orders by maker address from 1inch",
		examples: [][]Example{{
			{User: "{{user1}}", Text: "Get orders for address 0xfa80cd9b3becc0b4403b0f421384724f2810775f"},
			{User: "{{agentName}}", Text: "I'll fetch orders for that address.", Action: "GET_ORDERS_BY_MAKER"},
		}},
		keywords: []string{"orders for", "orders by", "maker orders", "address orders"},
		schema:   makerSchema,
	}}
}

// Validate implements Action. Besides a keyword the text must carry an address.
func (a *GetOrdersByMaker) Validate(text string) bool {
	return a.matchesKeyword(text) && parser.HasAddress(text)
}

// Handle implements Action
func (a *GetOrdersByMaker) Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) bool {
	return run(ctx, rt, a.name, "getting orders by maker", cb, func(ctx context.Context, log logrus.FieldLogger, p *provider.Provider) (Response, error) {
		var params makerParams
		if err := extractParams(ctx, rt, p, "Extract address and pagination from: "+msg.Text, a.schema, &params); err != nil {
			return Response{}, err
		}

		page := types.PageParams{Page: params.Page, Limit: params.Limit}.WithDefaults()
		log.WithFields(logrus.Fields{"maker": params.Address, "page": page.Page}).Info("listing maker orders")

		orders, err := p.GetOrdersByMaker(ctx, params.Address, page)
		if err != nil {
			return Response{}, err
		}

		text := "No orders found for address " + params.Address
		if len(orders.Items) > 0 {
			text = fmt.Sprintf("Found %d orders for %s:\n%s", len(orders.Items), params.Address, formatOrderList(orders.Items))
		}
		return Response{Text: text, Content: map[string]any{"orders": orders}}, nil
	})
}

func formatOrderList(items []types.Order) string {
	lines := make([]string, 0, len(items))
	for i, order := range items {
		lines = append(lines, fmt.Sprintf("%d. Order %s - Status: %s",
			i+1, parser.ShortHash(order.OrderHash, hashPrefixLen), order.StatusOrPending()))
	}
	return strings.Join(lines, "\n")
}
