package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/types"
)

const (
	quotePath        = "/quoter/v1.0/quote/receive"
	buildOrderPath   = "/quoter/v1.0/quote/build"
	activeOrdersPath = "/orders/v1.0/order/active"
	makerOrdersPath  = "/orders/v1.0/order/maker/"

	maxErrorBody = 4096
)

// FusionPlusClient talks to the 1inch Fusion+ REST API
type FusionPlusClient struct {
	baseURL    string
	authKey    string
	httpClient *http.Client
}

// Option configures a FusionPlusClient
type Option func(*FusionPlusClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *FusionPlusClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request made by the client
func WithTimeout(d time.Duration) Option {
	return func(c *FusionPlusClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewFusionPlusClient creates a client bound to baseURL and authKey
func NewFusionPlusClient(baseURL, authKey string, opts ...Option) (*FusionPlusClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected http(s)://host[/path]", baseURL)
	}
	if authKey == "" {
		return nil, fmt.Errorf("auth key is required")
	}

	c := &FusionPlusClient{
		baseURL:    strings.TrimRight(u.String(), "/"),
		authKey:    authKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL
func (c *FusionPlusClient) BaseURL() string {
	return c.baseURL
}

// GetQuote requests a cross-chain quote
func (c *FusionPlusClient) GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error) {
	var quote types.Quote
	if err := c.do(ctx, http.MethodGet, quotePath, quoteQuery(params), nil, &quote); err != nil {
		return nil, err
	}
	quote.Params = params
	return &quote, nil
}

// CreateOrder builds an order from a previously fetched quote
func (c *FusionPlusClient) CreateOrder(ctx context.Context, quote *types.Quote, opts types.OrderOptions) (*types.Order, error) {
	if quote == nil {
		return nil, fmt.Errorf("quote is required")
	}

	params := quote.Params
	params.WalletAddress = opts.WalletAddress
	query := quoteQuery(params)
	if opts.Preset != "" {
		query.Set("preset", string(opts.Preset))
	}
	if opts.Fee != nil {
		query.Set("fee", strconv.Itoa(opts.Fee.TakingFeeBps))
		query.Set("feeReceiver", opts.Fee.TakingFeeReceiver)
	}

	raw := quote.Raw
	if len(raw) == 0 {
		encoded, err := json.Marshal(quote)
		if err != nil {
			return nil, fmt.Errorf("failed to encode quote: %w", err)
		}
		raw = encoded
	}
	body := map[string]any{"quote": raw}

	var built struct {
		OrderHash string          `json:"orderHash"`
		TypedData json.RawMessage `json:"typedData"`
		Extension string          `json:"extension"`
	}
	if err := c.do(ctx, http.MethodPost, buildOrderPath, query, body, &built); err != nil {
		return nil, err
	}
	if built.OrderHash == "" {
		return nil, apperrors.Remote("order response did not contain an order hash", nil)
	}

	return &types.Order{
		OrderHash:  built.OrderHash,
		Status:     types.OrderPending,
		QuoteID:    quote.QuoteID,
		SrcChainID: params.SrcChainID,
		DstChainID: params.DstChainID,
	}, nil
}

// GetActiveOrders lists orders that are still being auctioned
func (c *FusionPlusClient) GetActiveOrders(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
	return c.listOrders(ctx, activeOrdersPath, page)
}

// GetOrdersByMaker lists the orders created by address
func (c *FusionPlusClient) GetOrdersByMaker(ctx context.Context, address string, page types.PageParams) (*types.OrderPage, error) {
	if address == "" {
		return nil, fmt.Errorf("maker address is required")
	}
	return c.listOrders(ctx, makerOrdersPath+url.PathEscape(address), page)
}

func (c *FusionPlusClient) listOrders(ctx context.Context, path string, page types.PageParams) (*types.OrderPage, error) {
	page = page.WithDefaults()
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("limit", strconv.Itoa(page.Limit))

	var resp struct {
		Meta struct {
			TotalItems  int `json:"totalItems"`
			CurrentPage int `json:"currentPage"`
		} `json:"meta"`
		Items []types.Order `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	result := &types.OrderPage{
		Items: resp.Items,
		Page:  page.Page,
		Limit: page.Limit,
		Total: resp.Meta.TotalItems,
	}
	if resp.Meta.CurrentPage > 0 {
		result.Page = resp.Meta.CurrentPage
	}
	if result.Items == nil {
		result.Items = []types.Order{}
	}
	return result, nil
}

func quoteQuery(p types.QuoteParams) url.Values {
	q := url.Values{}
	q.Set("srcChain", strconv.Itoa(int(p.SrcChainID)))
	q.Set("dstChain", strconv.Itoa(int(p.DstChainID)))
	q.Set("srcTokenAddress", p.SrcTokenAddress)
	q.Set("dstTokenAddress", p.DstTokenAddress)
	q.Set("amount", p.Amount)
	if p.WalletAddress != "" {
		q.Set("walletAddress", p.WalletAddress)
	}
	q.Set("enableEstimate", strconv.FormatBool(p.EnableEstimate))
	return q
}

func (c *FusionPlusClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Remote(fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()

	// Check for successful status codes (200-299)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Remote("failed to decode response", err)
	}
	return nil
}

// apiError extracts the service's own error message from a failed response
func apiError(resp *http.Response) error {
	status := fmt.Errorf("API returned status code %d", resp.StatusCode)

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return apperrors.Remote(status.Error(), nil)
	}

	var errorResp map[string]any
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		for _, key := range []string{"description", "message", "error"} {
			if message, ok := errorResp[key].(string); ok && message != "" {
				return apperrors.Remote(message, status)
			}
		}
	}

	// If we can't parse it, show the raw body
	return apperrors.Remote(strings.TrimSpace(string(bodyBytes)), status)
}
