package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oneinch-agent/pkg/types"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"chains", "ls"},
	Short:   "List supported networks",
	Long: `List the chains that quotes and orders may use as source or destination.

Examples:
  oneinch-agent networks
  oneinch-agent networks --json`,
	Args: cobra.NoArgs,
	Run:  runNetworks,
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	networks := types.Networks()

	if jsonOutput {
		output := make([]map[string]any, 0, len(networks))
		for _, id := range networks {
			output = append(output, map[string]any{"chain_id": int(id), "name": id.Name()})
		}
		printJSON(output)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 40))
	color.Green("          SUPPORTED NETWORKS")
	fmt.Println(strings.Repeat("=", 40))
	for _, id := range networks {
		fmt.Printf("  %-8s %s\n", color.YellowString("%d", int(id)), id.Name())
	}
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("\nTotal: %d networks\n\n", len(networks))
}
