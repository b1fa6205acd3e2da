package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"oneinch-agent/config"
	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/provider"
)

var rootCmd = &cobra.Command{
	Use:   "oneinch-agent",
	Short: "Cross-chain swaps through 1inch Fusion+ from plain language or flags",
	Long: `oneinch-agent exposes 1inch Fusion+ cross-chain swaps as agent actions.
Ask for a quote or an order in plain language and a language model extracts the
parameters, or call the operations directly with flags.

Examples:
  oneinch-agent ask "Get me a quote to swap 1000 DAI from Ethereum to native token on Gnosis chain"
  oneinch-agent quote --src-chain 1 --dst-chain 100 --src-token 0x6b17...1d0f --dst-token native --amount 1000000000000000000000
  oneinch-agent orders active
  oneinch-agent orders maker 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
  oneinch-agent networks`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errFailedAction is returned after an action already reported its own failure
var errFailedAction = errors.New("action failed")

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// cleanFormatter prints only the message text
type cleanFormatter struct{}

func (f *cleanFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

func setupLogger(cfg config.LogConfig, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.Warnf("Invalid log level %s, using warn: %v", cfg.Level, err)
		level = logrus.WarnLevel
	}
	// Plain CLI runs stay quiet unless asked
	if !verbose && level > logrus.WarnLevel {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&cleanFormatter{})
	}
	return logger
}

// session bundles what every remote command needs
type session struct {
	settings *config.ViperSettings
	cfg      *config.Config
	log      *logrus.Logger
	provider *provider.Provider
	verbose  bool
	json     bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	settings := config.NewViperSettings()
	logger := setupLogger(config.LogConfig{
		Level:  settings.GetSetting(config.KeyLogLevel),
		Format: settings.GetSetting(config.KeyLogFormat),
	}, verbose)
	config.SetLogger(logger)

	cfg, err := config.Resolve(settings)
	if err != nil {
		return nil, err
	}

	p, err := provider.Initialize(cfg, provider.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &session{
		settings: settings,
		cfg:      cfg,
		log:      logger,
		provider: p,
		verbose:  verbose,
		json:     jsonOutput,
	}, nil
}

// spin runs fn behind a spinner unless the output is JSON
func (s *session) spin(suffix string, fn func() error) error {
	if s.json {
		return fn()
	}
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " " + suffix
	sp.Start()
	err := fn()
	sp.Stop()
	return err
}

func printJSON(v any) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}

func printError(err error) {
	if errors.Is(err, errFailedAction) {
		return
	}
	fmt.Fprintln(os.Stderr, errorMessage(err))
}

// errorMessage renders err for the terminal. Setup failures point at the
// configuration; remote failures name the service.
func errorMessage(err error) string {
	kind := apperrors.KindOf(err)
	switch {
	case kind.Fatal():
		return color.RedString("\nConfiguration error: %v\n", err) +
			"Check your environment, .env or .oneinch-agent.yaml (see: oneinch-agent config)\n"
	case kind == apperrors.KindRemoteService:
		return color.RedString("\n1inch error: %v\n", err)
	default:
		return fmt.Sprintf("\nError: %v\n", err)
	}
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
