package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oneinch-agent/pkg/parser"
	"oneinch-agent/pkg/types"
)

var (
	ordersPage    int
	ordersLimit   int
	ordersAll     bool
	ordersMax     int
	watchOrders   bool
	watchInterval int
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect Fusion+ orders",
	Long: `List active cross-chain orders or the orders placed by a maker address.

Examples:
  oneinch-agent orders active
  oneinch-agent orders active --watch --interval 10
  oneinch-agent orders active --all --limit 50
  oneinch-agent orders maker 0x742d35Cc6634C0532925a3b844Bc454e4438f44e --page 2 --limit 20`,
}

var ordersActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List active orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersActive,
}

var ordersMakerCmd = &cobra.Command{
	Use:   "maker <address>",
	Short: "List orders placed by a maker",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersMaker,
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersActiveCmd)
	ordersCmd.AddCommand(ordersMakerCmd)

	ordersCmd.PersistentFlags().IntVar(&ordersPage, "page", types.DefaultPage, "Page number")
	ordersCmd.PersistentFlags().IntVar(&ordersLimit, "limit", types.DefaultLimit, "Orders per page")
	ordersCmd.PersistentFlags().BoolVar(&ordersAll, "all", false, "Fetch every page instead of one")
	ordersCmd.PersistentFlags().IntVar(&ordersMax, "max-pages", 10, "Page cap when using --all")

	ordersActiveCmd.Flags().BoolVarP(&watchOrders, "watch", "w", false, "Watch active orders continuously")
	ordersActiveCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func pageFlags() types.PageParams {
	return types.PageParams{Page: ordersPage, Limit: ordersLimit}.WithDefaults()
}

func runOrdersActive(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if watchOrders {
		return watchActiveOrders(s)
	}

	var page *types.OrderPage
	err = s.spin("Fetching active orders...", func() error {
		if ordersAll {
			page, err = s.provider.AllActiveOrders(context.Background(), ordersLimit, ordersMax)
		} else {
			page, err = s.provider.GetActiveOrders(context.Background(), pageFlags())
		}
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		printJSON(page)
		return nil
	}
	displayOrders("ACTIVE ORDERS", page)
	return nil
}

func runOrdersMaker(cmd *cobra.Command, args []string) error {
	address, ok := parser.FindAddress(args[0])
	if !ok || address != args[0] {
		return fmt.Errorf("invalid maker address: %s", args[0])
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var page *types.OrderPage
	err = s.spin("Fetching maker orders...", func() error {
		if ordersAll {
			page, err = s.provider.AllOrdersByMaker(context.Background(), address, ordersLimit, ordersMax)
		} else {
			page, err = s.provider.GetOrdersByMaker(context.Background(), address, pageFlags())
		}
		return err
	})
	if err != nil {
		return err
	}

	if s.json {
		printJSON(page)
		return nil
	}
	displayOrders("ORDERS BY "+common.HexToAddress(address).Hex(), page)
	return nil
}

func watchActiveOrders(s *session) error {
	if s.json {
		return fmt.Errorf("watch mode not supported with JSON output")
	}
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %d", watchInterval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nWatching active orders every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	checkActiveOrders(ctx, s)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped watching.")
			return nil
		case <-ticker.C:
			checkActiveOrders(ctx, s)
		}
	}
}

func checkActiveOrders(ctx context.Context, s *session) {
	page, err := s.provider.GetActiveOrders(ctx, pageFlags())
	if err != nil {
		if ctx.Err() == nil {
			color.Red("Error: %v", err)
		}
		return
	}
	displayOrders("ACTIVE ORDERS "+time.Now().Format("15:04:05"), page)
}

func displayOrders(title string, page *types.OrderPage) {
	if len(page.Items) == 0 {
		fmt.Println("\nNo orders found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("  %s", title)
	fmt.Println(strings.Repeat("=", 80))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ORDER HASH\tSTATUS\tROUTE\tDEADLINE")
	for _, order := range page.Items {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			parser.ShortHash(order.OrderHash, 18),
			coloredStatus(order.StatusOrPending()),
			route(order),
			deadline(order.Deadline))
	}
	w.Flush()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("\nPage %d, %d of %d orders\n\n", page.Page, len(page.Items), page.Total)
}

func route(o types.Order) string {
	if o.SrcChainID == 0 && o.DstChainID == 0 {
		return "-"
	}
	return fmt.Sprintf("%s -> %s", chainLabel(o.SrcChainID), chainLabel(o.DstChainID))
}

func chainLabel(id types.NetworkID) string {
	if name := id.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("chain %d", id)
}

func deadline(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04:05")
}

func coloredStatus(status types.OrderStatus) string {
	label := strings.ToUpper(string(status))

	switch status {
	case types.OrderFilled:
		return color.GreenString(label)
	case types.OrderPending:
		return color.YellowString(label)
	case types.OrderExpired, types.OrderCancelled:
		return color.RedString(label)
	default:
		return label
	}
}
