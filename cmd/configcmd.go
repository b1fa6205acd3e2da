package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oneinch-agent/config"
	"oneinch-agent/pkg/provider"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the configuration resolved from the environment, .env and
.oneinch-agent.yaml. Secrets are redacted.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg

	signer := ""
	if cfg.PrivateKey != "" {
		if signer, err = cfg.SignerAddress(); err != nil {
			color.Yellow("Warning: %v", err)
		}
	}
	wallet := cfg.WalletAddress
	if wallet != "" {
		wallet = provider.ChecksumAddress(wallet)
	}

	if s.json {
		printJSON(map[string]any{
			"base_url":        cfg.BaseURL,
			"auth_key":        redact(cfg.AuthKey),
			"wallet_address":  wallet,
			"signer_address":  signer,
			"request_timeout": cfg.RequestTimeout.String(),
			"extract_timeout": cfg.ExtractTimeout.String(),
			"llm_provider":    cfg.LLM.Provider,
			"llm_model":       cfg.LLM.Model,
		})
		return nil
	}

	rows := [][2]string{
		{config.KeyBaseURL, cfg.BaseURL},
		{config.KeyAuthKey, redact(cfg.AuthKey)},
		{config.KeyWalletAddress, orNone(wallet)},
		{"signer address", orNone(signer)},
		{config.KeyRequestTimeout, cfg.RequestTimeout.String()},
		{config.KeyExtractTimeout, cfg.ExtractTimeout.String()},
		{config.KeyLLMProvider, cfg.LLM.Provider},
		{config.KeyLLMModel, orNone(cfg.LLM.Model)},
		{config.KeyLLMAPIKey, redact(cfg.LLM.APIKey)},
	}

	fmt.Println()
	for _, row := range rows {
		fmt.Printf("  %-26s %s\n", row[0], color.CyanString(row[1]))
	}
	fmt.Println()
	return nil
}

func redact(secret string) string {
	switch {
	case secret == "":
		return "(none)"
	case len(secret) <= 8:
		return strings.Repeat("*", len(secret))
	default:
		return secret[:4] + strings.Repeat("*", 8)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
