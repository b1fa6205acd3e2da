// Package provider holds the single configured swap-service client shared by
// every action, plus the address and network helpers the actions rely on.
package provider

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"oneinch-agent/config"
	"oneinch-agent/pkg/client"
	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/types"
)

// Name is the key the host uses to look the provider up
const Name = "1inch"

// SwapService is the remote swap-aggregation service
type SwapService interface {
	GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error)
	CreateOrder(ctx context.Context, quote *types.Quote, opts types.OrderOptions) (*types.Order, error)
	GetActiveOrders(ctx context.Context, page types.PageParams) (*types.OrderPage, error)
	GetOrdersByMaker(ctx context.Context, address string, page types.PageParams) (*types.OrderPage, error)
}

// Provider wraps the configured swap service
type Provider struct {
	cfg     *config.Config
	service SwapService
	log     logrus.FieldLogger
}

// Option configures a Provider
type Option func(*Provider)

// WithService replaces the swap service, e.g. with a stub
func WithService(s SwapService) Option {
	return func(p *Provider) {
		if s != nil {
			p.service = s
		}
	}
}

// WithLogger sets the provider logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// Initialize builds the provider from a resolved configuration
func Initialize(cfg *config.Config, opts ...Option) (*Provider, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.KindInitialization, "configuration is required")
	}

	p := &Provider{cfg: cfg, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(p)
	}

	if p.service == nil {
		svc, err := client.NewFusionPlusClient(cfg.BaseURL, cfg.AuthKey, client.WithTimeout(cfg.RequestTimeout))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindInitialization, "failed to initialize 1inch client")
		}
		p.service = svc
	}

	p.log.WithField("base_url", cfg.BaseURL).Info("1inch provider initialized")
	return p, nil
}

// Factory resolves the configuration from settings and initializes a provider
func Factory(settings config.Settings, opts ...Option) (*Provider, error) {
	cfg, err := config.Resolve(settings)
	if err != nil {
		return nil, err
	}
	return Initialize(cfg, opts...)
}

// Config returns the provider configuration
func (p *Provider) Config() *config.Config {
	return p.cfg
}

// FormatTokenAddress maps "eth" and "native" to the native-asset pseudo-address
func (p *Provider) FormatTokenAddress(address string) string {
	return FormatTokenAddress(address)
}

// IsValidNetwork reports whether chainID is supported by the swap service
func (p *Provider) IsValidNetwork(chainID int) bool {
	return IsValidNetwork(chainID)
}

// FormatTokenAddress maps "eth" and "native" to the native-asset pseudo-address
func FormatTokenAddress(address string) string {
	switch strings.ToLower(address) {
	case "eth", "native":
		return types.NativeTokenAddress
	}
	return address
}

// IsValidNetwork reports whether chainID is supported by the swap service
func IsValidNetwork(chainID int) bool {
	return types.NetworkID(chainID).Supported()
}

// ChecksumAddress returns the EIP-55 form of a hex address, or "" if it is not one
func ChecksumAddress(address string) string {
	if !common.IsHexAddress(address) {
		return ""
	}
	return common.HexToAddress(address).Hex()
}

// GetQuote fetches a quote
func (p *Provider) GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error) {
	return p.service.GetQuote(ctx, params)
}

// CreateOrder creates an order from a quote
func (p *Provider) CreateOrder(ctx context.Context, quote *types.Quote, opts types.OrderOptions) (*types.Order, error) {
	return p.service.CreateOrder(ctx, quote, opts)
}

// GetActiveOrders lists active orders
func (p *Provider) GetActiveOrders(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
	return p.service.GetActiveOrders(ctx, page)
}

// GetOrdersByMaker lists the orders of a maker address
func (p *Provider) GetOrdersByMaker(ctx context.Context, address string, page types.PageParams) (*types.OrderPage, error) {
	return p.service.GetOrdersByMaker(ctx, address, page)
}
