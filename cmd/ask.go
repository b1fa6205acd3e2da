package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oneinch-agent/pkg/actions"
	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/plugin"
	"oneinch-agent/pkg/runtime"
)

var askUser string

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Run a plain-language request through the agent actions",
	Long: `Route a message to the matching 1inch action. A language model extracts the
parameters (ONEINCH_LLM_PROVIDER selects openai or ollama) and the action calls
Fusion+ with them.

Examples:
  oneinch-agent ask Get me a quote to swap 1000 DAI from Ethereum to native token on Gnosis chain
  oneinch-agent ask "Show me my active orders"
  oneinch-agent ask "Get orders for address 0x742d35Cc6634C0532925a3b844Bc454e4438f44e"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askUser, "user", "cli", "User id attached to the message")
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	extractor, err := extract.FromConfig(s.cfg.LLM)
	if err != nil {
		return err
	}

	p := plugin.New()
	rt := runtime.New(p, s.settings, extractor,
		runtime.WithLogger(s.log),
		runtime.WithProvider(s.provider))

	if s.verbose {
		for _, a := range p.Relevant(text) {
			fmt.Printf("Debug: %s matches\n", a.Name())
		}
	}

	var result runtime.Result
	var handled bool
	err = s.spin("Thinking...", func() error {
		result, handled = rt.Process(context.Background(), actions.Message{UserID: askUser, Text: text})
		return nil
	})
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("no 1inch action matches %q", text)
	}

	switch {
	case s.json:
		printJSON(result)
	case result.Success:
		color.Green("\n[%s]", result.Action)
		printSuccess(result.Response.Text)
	default:
		color.Red("\n[%s]", result.Action)
		printSuccess(result.Response.Text)
	}

	if !result.Success {
		return errFailedAction
	}
	return nil
}
