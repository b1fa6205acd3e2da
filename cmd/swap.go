package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

// swapFlags are shared by quote and create-order
type swapFlags struct {
	srcChain int
	dstChain int
	srcToken string
	dstToken string
	amount   string
	wallet   string
}

var (
	quoteFlags swapFlags
	orderFlags swapFlags

	orderPreset      string
	orderFeeBps      int
	orderFeeReceiver string
	noConfirm        bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Get a cross-chain swap quote",
	Long: `Request a Fusion+ quote for a cross-chain swap.

Token addresses may be given as contract addresses or as "eth"/"native" for the
chain's native token. The amount is in the source token's smallest unit.

Examples:
  oneinch-agent quote --src-chain 1 --dst-chain 100 --src-token 0x6b175474e89094c44da98b954eedeac495271d0f --dst-token native --amount 1000000000000000000000
  oneinch-agent quote --src-chain 42161 --dst-chain 8453 --src-token eth --dst-token 0x833589fcd6edb6e08f4c7c32d4f71b54bda02913 --amount 50000000000000000 --json`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

var createOrderCmd = &cobra.Command{
	Use:     "create-order",
	Aliases: []string{"order"},
	Short:   "Create a cross-chain swap order",
	Long: `Quote a cross-chain swap and submit an order built from that quote.

IMPORTANT:
  - A maker wallet is required: pass --wallet or set ONEINCH_WALLET_ADDRESS
  - A taker fee is attached only when both --fee-bps and --fee-receiver are set

Examples:
  oneinch-agent create-order --src-chain 1 --dst-chain 137 --src-token 0x6b175474e89094c44da98b954eedeac495271d0f --dst-token 0x3c499c542cef5e3811e1192ce70d8cc03d5c3359 --amount 1000000000000000000 --preset fast
  oneinch-agent create-order ... --fee-bps 10 --fee-receiver 0x742d35Cc6634C0532925a3b844Bc454e4438f44e --yes`,
	Args: cobra.NoArgs,
	RunE: runCreateOrder,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(createOrderCmd)

	bindSwapFlags(quoteCmd, &quoteFlags)
	bindSwapFlags(createOrderCmd, &orderFlags)

	createOrderCmd.Flags().StringVar(&orderPreset, "preset", "", "Auction preset: fast, medium or slow (optional)")
	createOrderCmd.Flags().IntVar(&orderFeeBps, "fee-bps", 0, "Taker fee in basis points (optional)")
	createOrderCmd.Flags().StringVar(&orderFeeReceiver, "fee-receiver", "", "Taker fee receiver address (optional)")
	createOrderCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func bindSwapFlags(cmd *cobra.Command, f *swapFlags) {
	cmd.Flags().IntVar(&f.srcChain, "src-chain", 0, "Source chain id (REQUIRED)")
	cmd.Flags().IntVar(&f.dstChain, "dst-chain", 0, "Destination chain id (REQUIRED)")
	cmd.Flags().StringVar(&f.srcToken, "src-token", "", "Source token address or eth/native (REQUIRED)")
	cmd.Flags().StringVar(&f.dstToken, "dst-token", "", "Destination token address or eth/native (REQUIRED)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount in the source token's smallest unit (REQUIRED)")
	cmd.Flags().StringVar(&f.wallet, "wallet", "", "Wallet address (defaults to ONEINCH_WALLET_ADDRESS)")
	for _, name := range []string{"src-chain", "dst-chain", "src-token", "dst-token", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

// quoteParams validates the flags and builds the quote request
func (f swapFlags) quoteParams() (types.QuoteParams, error) {
	if !provider.IsValidNetwork(f.srcChain) {
		return types.QuoteParams{}, fmt.Errorf("unsupported source chain %d (see: oneinch-agent networks)", f.srcChain)
	}
	if !provider.IsValidNetwork(f.dstChain) {
		return types.QuoteParams{}, fmt.Errorf("unsupported destination chain %d (see: oneinch-agent networks)", f.dstChain)
	}
	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return types.QuoteParams{}, fmt.Errorf("invalid amount %q: %w", f.amount, err)
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return types.QuoteParams{}, fmt.Errorf("amount must be a positive whole number of base units, got %s", f.amount)
	}
	if f.wallet != "" && !common.IsHexAddress(f.wallet) {
		return types.QuoteParams{}, fmt.Errorf("invalid wallet address: %s", f.wallet)
	}

	return types.QuoteParams{
		SrcChainID:      types.NetworkID(f.srcChain),
		DstChainID:      types.NetworkID(f.dstChain),
		SrcTokenAddress: provider.FormatTokenAddress(f.srcToken),
		DstTokenAddress: provider.FormatTokenAddress(f.dstToken),
		Amount:          amount.String(),
		WalletAddress:   f.wallet,
	}, nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	params, err := quoteFlags.quoteParams()
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if params.WalletAddress == "" {
		params.WalletAddress = s.cfg.WalletAddress
	}
	if params.WalletAddress == "" {
		params.WalletAddress = types.ZeroAddress
	}

	var quote *types.Quote
	err = s.spin("Fetching quote...", func() error {
		quote, err = s.provider.GetQuote(context.Background(), params)
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		printJSON(quote)
		return nil
	}
	displayQuote(quote)
	return nil
}

func runCreateOrder(cmd *cobra.Command, args []string) error {
	params, err := orderFlags.quoteParams()
	if err != nil {
		return err
	}
	preset := types.Preset(strings.ToLower(orderPreset))
	if preset != "" && !preset.Valid() {
		return fmt.Errorf("invalid preset %q: use fast, medium or slow", orderPreset)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if params.WalletAddress == "" {
		params.WalletAddress = s.cfg.WalletAddress
	}
	if params.WalletAddress == "" {
		return fmt.Errorf("wallet address is required for creating orders: pass --wallet or set ONEINCH_WALLET_ADDRESS")
	}
	params.EnableEstimate = true

	ctx := context.Background()
	var quote *types.Quote
	err = s.spin("Fetching quote...", func() error {
		quote, err = s.provider.GetQuote(ctx, params)
		return err
	})
	if err != nil {
		return err
	}

	if !s.json {
		displayQuote(quote)
	}

	// Ask for confirmation
	if !noConfirm && !s.json {
		if !confirmOrder() {
			fmt.Println("\nOrder cancelled.")
			return nil
		}
	}

	orderParams := types.OrderParams{QuoteParams: params, Preset: preset}
	if cmd.Flags().Changed("fee-bps") {
		orderParams.TakingFeeBps = &orderFeeBps
	}
	if orderFeeReceiver != "" {
		orderParams.TakingFeeReceiver = &orderFeeReceiver
	}
	opts := orderParams.Options()
	if s.verbose && opts.Fee == nil && (orderFeeBps != 0 || orderFeeReceiver != "") {
		color.Yellow("Fee ignored: both --fee-bps and --fee-receiver are needed")
	}

	var order *types.Order
	err = s.spin("Submitting order...", func() error {
		order, err = s.provider.CreateOrder(ctx, quote, opts)
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		printJSON(map[string]any{
			"order_hash":    order.OrderHash,
			"quote_id":      quote.QuoteID,
			"source_amount": params.Amount,
			"dest_amount":   quote.DstAmount,
			"maker":         provider.ChecksumAddress(params.WalletAddress),
			"status":        order.StatusOrPending(),
			"preset":        opts.Preset,
			"fee":           opts.Fee,
		})
		return nil
	}

	color.Green("\n✓ Order created successfully!")
	fmt.Printf("  Order Hash: %s\n", color.CyanString(order.OrderHash))
	fmt.Printf("  Maker:      %s\n", provider.ChecksumAddress(params.WalletAddress))
	fmt.Printf("  Status:     %s\n", coloredStatus(order.StatusOrPending()))

	fmt.Println("\nYou can follow your orders using:")
	color.Cyan("  oneinch-agent orders maker %s\n", params.WalletAddress)
	return nil
}

func displayQuote(quote *types.Quote) {
	p := quote.Params
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	if quote.QuoteID != "" {
		fmt.Printf("\n  Quote ID:          %s\n", color.CyanString(quote.QuoteID))
	}
	fmt.Printf("  From:              %s on %s\n", p.Amount, color.YellowString(p.SrcChainID.Name()))
	fmt.Printf("  To:                ~%s on %s\n", quote.DstAmount, color.YellowString(p.DstChainID.Name()))
	fmt.Printf("  Source Token:      %s\n", color.HiBlackString(p.SrcTokenAddress))
	fmt.Printf("  Destination Token: %s\n", color.HiBlackString(p.DstTokenAddress))
	if quote.GasLimit != "" {
		fmt.Printf("  Estimated Gas:     %s\n", quote.GasLimit)
	}
	fmt.Printf("  Price Impact:      %s%%\n", quote.PriceImpact.StringFixed(2))
	if quote.RecommendedPreset != "" {
		fmt.Printf("  Recommended:       %s preset\n", quote.RecommendedPreset)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func confirmOrder() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
