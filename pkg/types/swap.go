package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NativeTokenAddress is the pseudo-address the swap service uses for a chain's native asset
const NativeTokenAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// ZeroAddress is sent as the wallet when a quote is requested without one
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Preset selects the auction speed of an order
type Preset string

const (
	PresetFast   Preset = "fast"
	PresetMedium Preset = "medium"
	PresetSlow   Preset = "slow"
)

// Valid reports whether p is one of the known presets
func (p Preset) Valid() bool {
	switch p {
	case PresetFast, PresetMedium, PresetSlow:
		return true
	}
	return false
}

// QuoteParams describes a quote request
type QuoteParams struct {
	SrcChainID      NetworkID
	DstChainID      NetworkID
	SrcTokenAddress string
	DstTokenAddress string
	Amount          string
	WalletAddress   string
	EnableEstimate  bool
}

// Quote is the swap service's answer to a quote request. Raw keeps the
// original document so it can be handed back when building an order.
type Quote struct {
	QuoteID           string                 `json:"quoteId,omitempty"`
	SrcTokenAmount    string                 `json:"srcTokenAmount,omitempty"`
	DstAmount         string                 `json:"dstTokenAmount"`
	GasLimit          string                 `json:"gas,omitempty"`
	PriceImpact       decimal.Decimal        `json:"priceImpactPercent"`
	RecommendedPreset Preset                 `json:"recommendedPreset,omitempty"`
	Presets           map[Preset]QuotePreset `json:"presets,omitempty"`

	// Params is the request that produced the quote
	Params QuoteParams     `json:"-"`
	Raw    json.RawMessage `json:"-"`
}

// QuotePreset holds the auction parameters of one preset
type QuotePreset struct {
	AuctionDuration   int64  `json:"auctionDuration"`
	StartAmount       string `json:"startAmount"`
	AuctionEndAmount  string `json:"auctionEndAmount"`
	SecretsCount      int    `json:"secretsCount"`
	AllowPartialFills bool   `json:"allowPartialFills"`
}

// UnmarshalJSON decodes the known fields and keeps the full document in Raw
func (q *Quote) UnmarshalJSON(data []byte) error {
	type plain Quote
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*q = Quote(decoded)
	q.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Fee is the taker fee clause of an order
type Fee struct {
	TakingFeeBps      int    `json:"takingFeeBps"`
	TakingFeeReceiver string `json:"takingFeeReceiver"`
}

// OrderOptions are the order settings layered on top of a quote
type OrderOptions struct {
	WalletAddress string `json:"walletAddress"`
	Preset        Preset `json:"preset,omitempty"`
	Fee           *Fee   `json:"fee,omitempty"`
}

// OrderParams is a quote request plus the order options
type OrderParams struct {
	QuoteParams
	Preset            Preset
	TakingFeeBps      *int
	TakingFeeReceiver *string
}

// Options builds the order options. The fee clause is attached only when both
// a positive basis-point value and a receiver are present.
func (p OrderParams) Options() OrderOptions {
	return OrderOptions{
		WalletAddress: p.WalletAddress,
		Preset:        p.Preset,
		Fee:           NewFee(p.TakingFeeBps, p.TakingFeeReceiver),
	}
}

// NewFee returns nil unless both halves of the fee clause are usable
func NewFee(bps *int, receiver *string) *Fee {
	if bps == nil || *bps <= 0 || receiver == nil || *receiver == "" {
		return nil
	}
	return &Fee{TakingFeeBps: *bps, TakingFeeReceiver: *receiver}
}

// OrderStatus is owned and advanced by the swap service
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFilled    OrderStatus = "filled"
	OrderExpired   OrderStatus = "expired"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is an order as reported by the swap service
type Order struct {
	OrderHash  string      `json:"orderHash"`
	Status     OrderStatus `json:"status,omitempty"`
	QuoteID    string      `json:"quoteId,omitempty"`
	SrcChainID NetworkID   `json:"srcChainId,omitempty"`
	DstChainID NetworkID   `json:"dstChainId,omitempty"`
	Deadline   int64       `json:"deadline,omitempty"`
}

// StatusOrPending reports the order status, treating a missing one as pending
func (o Order) StatusOrPending() OrderStatus {
	if o.Status == "" {
		return OrderPending
	}
	return o.Status
}

// PageParams is a 1-based page request
type PageParams struct {
	Page  int
	Limit int
}

// Defaults used for order listings
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// WithDefaults fills in page 1 / limit 10 for missing values
func (p PageParams) WithDefaults() PageParams {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// OrderPage is one page of orders
type OrderPage struct {
	Items []Order `json:"items"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int     `json:"totalItems,omitempty"`
}
