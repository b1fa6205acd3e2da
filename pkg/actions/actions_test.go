package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneinch-agent/config"
	"oneinch-agent/pkg/client"
	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

const makerAddress = "0xfa80cd9b3becc0b4403b0f421384724f2810775f"

type stubService struct {
	quote      *types.Quote
	order      *types.Order
	page       *types.OrderPage
	err        error
	calls      int
	quoteReq   types.QuoteParams
	orderOpts  types.OrderOptions
	pageReq    types.PageParams
	makerQuery string
}

func (s *stubService) GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error) {
	s.calls++
	s.quoteReq = params
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

func (s *stubService) CreateOrder(ctx context.Context, quote *types.Quote, opts types.OrderOptions) (*types.Order, error) {
	s.calls++
	s.orderOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubService) GetActiveOrders(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
	s.calls++
	s.pageReq = page
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubService) GetOrdersByMaker(ctx context.Context, address string, page types.PageParams) (*types.OrderPage, error) {
	s.calls++
	s.makerQuery = address
	s.pageReq = page
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

type stubRuntime struct {
	provider  *provider.Provider
	extractor extract.Extractor
	logger    *logrus.Logger
	hook      *test.Hook
}

func (r *stubRuntime) Provider(ctx context.Context) (*provider.Provider, error) {
	if r.provider == nil {
		return nil, apperrors.Configuration("%s is required", config.KeyAuthKey)
	}
	return r.provider, nil
}
func (r *stubRuntime) Extractor() extract.Extractor { return r.extractor }
func (r *stubRuntime) Logger() logrus.FieldLogger   { return r.logger }

func newRuntime(t *testing.T, wallet string, svc provider.SwapService, params map[string]any) *stubRuntime {
	t.Helper()
	logger, hook := test.NewNullLogger()
	p, err := provider.Initialize(&config.Config{AuthKey: "k", BaseURL: config.DefaultBaseURL, WalletAddress: wallet},
		provider.WithService(svc), provider.WithLogger(logger))
	require.NoError(t, err)

	return &stubRuntime{
		provider: p,
		extractor: extract.Func(func(ctx context.Context, prompt string, schema *extract.Schema) (any, error) {
			return params, nil
		}),
		logger: logger,
		hook:   hook,
	}
}

func capture() (*Response, Callback) {
	var got Response
	return &got, func(r Response) { got = r }
}

func TestGetQuoteValidate(t *testing.T) {
	a := NewGetQuote()
	assert.False(t, a.Validate("hello"))
	assert.True(t, a.Validate("Get me a QUOTE"))
	assert.True(t, a.Validate("what is the Price"))
	assert.True(t, a.Validate("SWAP it"))
	assert.True(t, a.Validate("a cross-chain move"))
	assert.True(t, a.Validate("ask 1inch"))
}

func TestGetQuoteHandle(t *testing.T) {
	svc := &stubService{quote: &types.Quote{DstAmount: "0.998", GasLimit: "180000"}}
	rt := newRuntime(t, "", svc, map[string]any{
		"srcChainId":      1,
		"dstChainId":      100,
		"srcTokenAddress": "0x6b175474e89094c44da98b954eedeac495271d0f",
		"dstTokenAddress": "native",
		"amount":          "1000",
	})

	got, cb := capture()
	ok := NewGetQuote().Handle(context.Background(), rt, Message{Text: "Get me a quote to swap 1000 DAI from Ethereum to native token on Gnosis chain"}, cb)
	require.True(t, ok)

	assert.Equal(t, types.NetworkEthereum, svc.quoteReq.SrcChainID)
	assert.Equal(t, types.NetworkGnosis, svc.quoteReq.DstChainID)
	assert.Equal(t, types.NativeTokenAddress, svc.quoteReq.DstTokenAddress)
	assert.Equal(t, types.ZeroAddress, svc.quoteReq.WalletAddress)
	assert.False(t, svc.quoteReq.EnableEstimate)

	assert.Contains(t, got.Text, "1000 tokens on chain 1")
	assert.Contains(t, got.Text, "0.998 tokens on chain 100")
	assert.Contains(t, got.Text, "Estimated gas: 180000")
	assert.Same(t, svc.quote, got.Content["quote"])
}

func TestGetQuoteWalletFallback(t *testing.T) {
	params := map[string]any{
		"srcChainId": 1, "dstChainId": 137,
		"srcTokenAddress": "eth", "dstTokenAddress": "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
		"amount": "1",
	}

	svc := &stubService{quote: &types.Quote{}}
	rt := newRuntime(t, makerAddress, svc, params)
	require.True(t, NewGetQuote().Handle(context.Background(), rt, Message{Text: "quote"}, nil))
	assert.Equal(t, makerAddress, svc.quoteReq.WalletAddress)
	assert.Equal(t, types.NativeTokenAddress, svc.quoteReq.SrcTokenAddress)

	params["walletAddress"] = "0x1111111111111111111111111111111111111111"
	require.True(t, NewGetQuote().Handle(context.Background(), rt, Message{Text: "quote"}, nil))
	assert.Equal(t, "0x1111111111111111111111111111111111111111", svc.quoteReq.WalletAddress)
}

func TestCreateOrderRequiresWallet(t *testing.T) {
	svc := &stubService{}
	rt := newRuntime(t, "", svc, map[string]any{
		"srcChainId": 1, "dstChainId": 137,
		"srcTokenAddress": "DAI", "dstTokenAddress": "USDC",
		"amount": "1000",
	})

	got, cb := capture()
	ok := NewCreateOrder().Handle(context.Background(), rt, Message{Text: "create order"}, cb)
	assert.False(t, ok)
	assert.Zero(t, svc.calls)
	assert.Contains(t, got.Text, "Wallet address is required")
	assert.Equal(t, map[string]any{"error": "Wallet address is required for creating orders"}, got.Content)
}

func TestCreateOrderFeeClause(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"srcChainId": 1, "dstChainId": 137,
			"srcTokenAddress": "DAI", "dstTokenAddress": "USDC",
			"amount": "1000", "walletAddress": makerAddress, "preset": "fast",
		}
	}
	receiver := "0x2222222222222222222222222222222222222222"

	cases := []struct {
		name    string
		extra   map[string]any
		wantFee *types.Fee
	}{
		{name: "no fee", extra: nil, wantFee: nil},
		{name: "bps only", extra: map[string]any{"takingFeeBps": 30}, wantFee: nil},
		{name: "receiver only", extra: map[string]any{"takingFeeReceiver": receiver}, wantFee: nil},
		{name: "both", extra: map[string]any{"takingFeeBps": 30, "takingFeeReceiver": receiver}, wantFee: &types.Fee{TakingFeeBps: 30, TakingFeeReceiver: receiver}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := base()
			for k, v := range tc.extra {
				params[k] = v
			}
			svc := &stubService{
				quote: &types.Quote{QuoteID: "q-1", DstAmount: "999"},
				order: &types.Order{OrderHash: "0xdeadbeefdeadbeef", Status: types.OrderPending},
			}
			rt := newRuntime(t, "", svc, params)

			got, cb := capture()
			require.True(t, NewCreateOrder().Handle(context.Background(), rt, Message{Text: "create order"}, cb))

			assert.True(t, svc.quoteReq.EnableEstimate)
			assert.Equal(t, makerAddress, svc.orderOpts.WalletAddress)
			assert.Equal(t, types.PresetFast, svc.orderOpts.Preset)
			assert.Equal(t, tc.wantFee, svc.orderOpts.Fee)
			assert.Contains(t, got.Text, "Order ID: 0xdeadbeefdeadbeef")
			assert.Contains(t, got.Text, "Expected 999 tokens on chain 137")
			assert.Contains(t, got.Text, "Status: Pending")
		})
	}
}

func TestCreateOrderRejectsUnknownPreset(t *testing.T) {
	svc := &stubService{}
	rt := newRuntime(t, makerAddress, svc, map[string]any{
		"srcChainId": 1, "dstChainId": 137,
		"srcTokenAddress": "DAI", "dstTokenAddress": "USDC",
		"amount": "1", "preset": "turbo",
	})

	got, cb := capture()
	assert.False(t, NewCreateOrder().Handle(context.Background(), rt, Message{Text: "swap"}, cb))
	assert.Zero(t, svc.calls)
	assert.Contains(t, got.Content, "error")
}

func TestGetActiveOrders(t *testing.T) {
	a := NewGetActiveOrders()
	assert.True(t, a.Validate("Show me my ACTIVE ORDERS"))
	assert.True(t, a.Validate("what's my order status"))
	assert.False(t, a.Validate("show me orders"))

	svc := &stubService{page: &types.OrderPage{Items: []types.Order{
		{OrderHash: "0x1234567890abcdef", Status: types.OrderPending},
		{OrderHash: "0xfedcba0987654321"},
	}}}
	rt := newRuntime(t, "", svc, nil)

	got, cb := capture()
	require.True(t, a.Handle(context.Background(), rt, Message{Text: "my orders"}, cb))
	assert.Equal(t, types.PageParams{Page: 1, Limit: 10}, svc.pageReq)
	assert.Equal(t, "Found 2 active orders:\n1. Order 0x12345678... - Status: pending\n2. Order 0xfedcba09... - Status: pending", got.Text)

	svc.page = &types.OrderPage{}
	require.True(t, a.Handle(context.Background(), rt, Message{Text: "my orders"}, cb))
	assert.Equal(t, "No active orders found.", got.Text)
}

func TestGetOrdersByMakerValidate(t *testing.T) {
	a := NewGetOrdersByMaker()
	assert.True(t, a.Validate("Get orders for address "+makerAddress))
	assert.True(t, a.Validate("MAKER ORDERS "+makerAddress))
	assert.False(t, a.Validate("Get orders for address 0x1234"))
	assert.False(t, a.Validate("Get orders for my wallet"))
	assert.False(t, a.Validate(makerAddress))
}

func TestGetOrdersByMakerDefaults(t *testing.T) {
	svc := &stubService{page: &types.OrderPage{Items: []types.Order{{OrderHash: "0xaaaaaaaaaaaaaaaa", Status: types.OrderFilled}}}}
	rt := newRuntime(t, "", svc, map[string]any{"address": makerAddress})

	got, cb := capture()
	require.True(t, NewGetOrdersByMaker().Handle(context.Background(), rt, Message{Text: "orders for " + makerAddress}, cb))
	assert.Equal(t, makerAddress, svc.makerQuery)
	assert.Equal(t, types.PageParams{Page: 1, Limit: 10}, svc.pageReq)
	assert.Equal(t, "Found 1 orders for "+makerAddress+":\n1. Order 0xaaaaaaaa... - Status: filled", got.Text)

	rt = newRuntime(t, "", svc, map[string]any{"address": makerAddress, "page": 3, "limit": 25})
	svc.page = &types.OrderPage{}
	require.True(t, NewGetOrdersByMaker().Handle(context.Background(), rt, Message{Text: "orders for " + makerAddress}, cb))
	assert.Equal(t, types.PageParams{Page: 3, Limit: 25}, svc.pageReq)
	assert.Equal(t, "No orders found for address "+makerAddress, got.Text)
}

func TestRemoteFailureYieldsOnlyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"description":"insufficient liquidity"}`))
	}))
	defer srv.Close()

	fusion, err := client.NewFusionPlusClient(srv.URL, "k")
	require.NoError(t, err)

	quoteParams := map[string]any{
		"srcChainId": 1, "dstChainId": 100,
		"srcTokenAddress": "DAI", "dstTokenAddress": "native",
		"amount": "1", "walletAddress": makerAddress,
	}

	cases := []struct {
		action Action
		params map[string]any
		prefix string
	}{
		{action: NewGetQuote(), params: quoteParams, prefix: "Error getting quote: "},
		{action: NewCreateOrder(), params: quoteParams, prefix: "Error creating order: "},
		{action: NewGetActiveOrders(), params: nil, prefix: "Error getting active orders: "},
		{action: NewGetOrdersByMaker(), params: map[string]any{"address": makerAddress}, prefix: "Error getting orders by maker: "},
	}

	for _, tc := range cases {
		t.Run(tc.action.Name(), func(t *testing.T) {
			rt := newRuntime(t, makerAddress, fusion, tc.params)

			got, cb := capture()
			assert.False(t, tc.action.Handle(context.Background(), rt, Message{Text: "x"}, cb))
			assert.Equal(t, map[string]any{"error": "insufficient liquidity"}, got.Content)
			assert.Equal(t, tc.prefix+"insufficient liquidity", got.Text)

			entry := rt.hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.ErrorLevel, entry.Level)
			assert.Equal(t, tc.action.Name(), entry.Data["action"])
			assert.NotEmpty(t, entry.Data["invocation"])
		})
	}
}

func TestExtractionFailureIsReported(t *testing.T) {
	svc := &stubService{}
	rt := newRuntime(t, makerAddress, svc, map[string]any{"srcChainId": "one"})

	got, cb := capture()
	assert.False(t, NewGetQuote().Handle(context.Background(), rt, Message{Text: "quote"}, cb))
	assert.Zero(t, svc.calls)
	assert.Len(t, got.Content, 1)
	assert.Contains(t, got.Content["error"], "failed to extract parameters")
}

func TestProviderFailureIsReported(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rt := &stubRuntime{logger: logger}

	got, cb := capture()
	assert.False(t, NewGetActiveOrders().Handle(context.Background(), rt, Message{Text: "my orders"}, cb))
	assert.Contains(t, got.Text, config.KeyAuthKey)
}

func TestExtractionHonoursTimeout(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p, err := provider.Initialize(&config.Config{AuthKey: "k", BaseURL: config.DefaultBaseURL, ExtractTimeout: 1},
		provider.WithService(&stubService{}), provider.WithLogger(logger))
	require.NoError(t, err)

	rt := &stubRuntime{
		provider: p,
		logger:   logger,
		extractor: extract.Func(func(ctx context.Context, prompt string, schema *extract.Schema) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}

	got, cb := capture()
	assert.False(t, NewGetOrdersByMaker().Handle(context.Background(), rt, Message{Text: "orders for " + makerAddress}, cb))
	assert.Contains(t, got.Content["error"], context.DeadlineExceeded.Error())
}

func TestAllRegistrationOrder(t *testing.T) {
	names := make([]string, 0, 4)
	for _, a := range All() {
		names = append(names, a.Name())
		assert.NotEmpty(t, a.Description())
		assert.NotEmpty(t, a.Examples())
		assert.NotEmpty(t, a.Similes())
	}
	assert.Equal(t, []string{"GET_QUOTE", "CREATE_ORDER", "GET_ACTIVE_ORDERS", "GET_ORDERS_BY_MAKER"}, names)
	assert.Nil(t, NewGetActiveOrders().Schema())
	assert.NotNil(t, NewGetQuote().Schema())
}
