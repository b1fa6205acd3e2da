package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"oneinch-agent/pkg/approval"
	"oneinch-agent/pkg/provider"
	"oneinch-agent/pkg/types"
)

var (
	approveChain  int
	approveToken  string
	approveAmount string
	approveRPCURL string
	approveOwner  string
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show the allowance granted to the 1inch limit order protocol",
	Long: `Read how much of a token the 1inch limit order protocol may pull from a wallet.
Fusion+ orders can only be filled once this allowance covers the order amount.

Examples:
  oneinch-agent allowance --chain 1 --token 0x6b175474e89094c44da98b954eedeac495271d0f --rpc-url https://eth.llamarpc.com`,
	Args: cobra.NoArgs,
	RunE: runAllowance,
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve the 1inch limit order protocol to spend a token",
	Long: `Send an ERC-20 approve transaction signed with ONEINCH_PRIVATE_KEY.
Nothing is sent when the current allowance already covers the amount.

Examples:
  oneinch-agent approve --chain 1 --token 0x6b175474e89094c44da98b954eedeac495271d0f --amount 1000000000000000000000
  oneinch-agent approve --chain 137 --token 0x3c499c542cef5e3811e1192ce70d8cc03d5c3359 --yes`,
	Args: cobra.NoArgs,
	RunE: runApprove,
}

func init() {
	rootCmd.AddCommand(allowanceCmd)
	rootCmd.AddCommand(approveCmd)

	for _, c := range []*cobra.Command{allowanceCmd, approveCmd} {
		c.Flags().IntVar(&approveChain, "chain", 0, "Chain id (REQUIRED)")
		c.Flags().StringVar(&approveToken, "token", "", "ERC-20 token address (REQUIRED)")
		c.Flags().StringVar(&approveRPCURL, "rpc-url", "", "RPC endpoint (defaults to ONEINCH_RPC_URL)")
		_ = c.MarkFlagRequired("chain")
		_ = c.MarkFlagRequired("token")
	}
	allowanceCmd.Flags().StringVar(&approveOwner, "owner", "", "Wallet address (defaults to ONEINCH_WALLET_ADDRESS)")
	approveCmd.Flags().StringVar(&approveAmount, "amount", "", "Amount in base units (default: unlimited)")
	approveCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func approvalTarget() (types.NetworkID, error) {
	if !provider.IsValidNetwork(approveChain) {
		return 0, fmt.Errorf("unsupported chain %d (see: oneinch-agent networks)", approveChain)
	}
	if !common.IsHexAddress(approveToken) {
		return 0, fmt.Errorf("invalid token address: %s", approveToken)
	}
	return types.NetworkID(approveChain), nil
}

func (s *session) rpcURL() string {
	if approveRPCURL != "" {
		return approveRPCURL
	}
	return s.cfg.RPCURL
}

func runAllowance(cmd *cobra.Command, args []string) error {
	chainID, err := approvalTarget()
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	owner := approveOwner
	if owner == "" {
		owner = s.cfg.WalletAddress
	}
	if !common.IsHexAddress(owner) {
		return fmt.Errorf("a wallet address is required: pass --owner or set ONEINCH_WALLET_ADDRESS")
	}

	ctx := context.Background()
	approver, closeClient, err := approval.Dial(ctx, s.rpcURL(), chainID, common.HexToAddress(owner), approval.WithLogger(s.log))
	if err != nil {
		return err
	}
	defer closeClient()

	var allowance *big.Int
	err = s.spin("Reading allowance...", func() error {
		allowance, err = approver.Allowance(ctx, approveToken)
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		printJSON(map[string]any{
			"chain_id":  approveChain,
			"token":     common.HexToAddress(approveToken).Hex(),
			"owner":     approver.Owner().Hex(),
			"spender":   approval.Spender(chainID).Hex(),
			"allowance": allowance.String(),
		})
		return nil
	}

	fmt.Printf("\n  Owner:     %s\n", color.CyanString(approver.Owner().Hex()))
	fmt.Printf("  Spender:   %s\n", approval.Spender(chainID).Hex())
	fmt.Printf("  Allowance: %s\n\n", formatAllowance(allowance))
	return nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	chainID, err := approvalTarget()
	if err != nil {
		return err
	}

	amount := approval.MaxAmount
	if approveAmount != "" {
		d, err := decimal.NewFromString(approveAmount)
		if err != nil || !d.IsPositive() || !d.IsInteger() {
			return fmt.Errorf("amount must be a positive whole number of base units, got %s", approveAmount)
		}
		amount = d.BigInt()
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	key, err := s.cfg.SignerKey()
	if err != nil {
		return err
	}

	ctx := context.Background()
	approver, closeClient, err := approval.Dial(ctx, s.rpcURL(), chainID, common.Address{},
		approval.WithSigner(key), approval.WithLogger(s.log))
	if err != nil {
		return err
	}
	defer closeClient()

	if !noConfirm && !s.json {
		fmt.Printf("\n  Token:   %s on %s\n", common.HexToAddress(approveToken).Hex(), chainID.Name())
		fmt.Printf("  Spender: %s\n", approval.Spender(chainID).Hex())
		fmt.Printf("  Amount:  %s\n", formatAllowance(amount))
		if !confirmOrder() {
			fmt.Println("\nApproval cancelled.")
			return nil
		}
	}

	var (
		hash common.Hash
		sent bool
	)
	err = s.spin("Sending approval...", func() error {
		hash, sent, err = approver.EnsureAllowance(ctx, approveToken, amount)
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		output := map[string]any{"sent": sent}
		if sent {
			output["tx_hash"] = hash.Hex()
		}
		printJSON(output)
		return nil
	}

	if !sent {
		printSuccess("Allowance already covers the amount; nothing sent.")
		return nil
	}
	color.Green("\n✓ Approval sent!")
	fmt.Printf("  Transaction: %s\n\n", color.CyanString(hash.Hex()))
	return nil
}

func formatAllowance(v *big.Int) string {
	if v.Cmp(approval.MaxAmount) == 0 {
		return "unlimited"
	}
	return v.String()
}
