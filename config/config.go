package config

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	apperrors "oneinch-agent/pkg/errors"
)

// Setting keys read from the host settings store
const (
	KeyAuthKey        = "ONEINCH_AUTH_KEY"
	KeyBaseURL        = "ONEINCH_BASE_URL"
	KeyWalletAddress  = "ONEINCH_WALLET_ADDRESS"
	KeyPrivateKey     = "ONEINCH_PRIVATE_KEY"
	KeyRPCURL         = "ONEINCH_RPC_URL"
	KeyRequestTimeout = "ONEINCH_REQUEST_TIMEOUT"
	KeyExtractTimeout = "ONEINCH_EXTRACT_TIMEOUT"
	KeyLLMProvider    = "ONEINCH_LLM_PROVIDER"
	KeyLLMBaseURL     = "ONEINCH_LLM_BASE_URL"
	KeyLLMAPIKey      = "ONEINCH_LLM_API_KEY"
	KeyLLMModel       = "ONEINCH_LLM_MODEL"
	KeyLogLevel       = "ONEINCH_LOG_LEVEL"
	KeyLogFormat      = "ONEINCH_LOG_FORMAT"
)

// Defaults
const (
	DefaultBaseURL        = "https://api.1inch.dev/fusion-plus"
	DefaultRequestTimeout = 30 * time.Second
	DefaultExtractTimeout = 60 * time.Second
	DefaultLLMProvider    = "openai"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Settings is the host runtime's settings store
type Settings interface {
	GetSetting(key string) string
}

// MapSettings serves settings from a plain map
type MapSettings map[string]string

// GetSetting implements Settings
func (m MapSettings) GetSetting(key string) string {
	return m[key]
}

// ViperSettings serves settings from the environment and an optional
// .oneinch-agent.yaml in $HOME or the working directory
type ViperSettings struct {
	v *viper.Viper
}

// NewViperSettings builds a viper-backed settings store
func NewViperSettings() *ViperSettings {
	v := viper.New()
	v.SetConfigName(".oneinch-agent")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	// Config file is optional
	_ = v.ReadInConfig()

	return &ViperSettings{v: v}
}

// GetSetting implements Settings
func (s *ViperSettings) GetSetting(key string) string {
	return strings.TrimSpace(s.v.GetString(key))
}

// Set overrides a setting, e.g. from a command line flag
func (s *ViperSettings) Set(key, value string) {
	s.v.Set(key, value)
}

// LLMConfig selects the language model used for parameter extraction
type LLMConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}

// LogConfig controls the logger
type LogConfig struct {
	Level  string
	Format string
}

// Config holds the plugin configuration. It is built once and never mutated.
type Config struct {
	AuthKey       string
	BaseURL       string
	WalletAddress string
	PrivateKey    string
	RPCURL        string

	RequestTimeout time.Duration
	ExtractTimeout time.Duration

	LLM LLMConfig
	Log LogConfig
}

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used by this package
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}

// Resolve reads the plugin configuration from settings
func Resolve(settings Settings) (*Config, error) {
	if settings == nil {
		return nil, apperrors.Configuration("no settings source")
	}

	cfg := &Config{
		AuthKey:       settings.GetSetting(KeyAuthKey),
		BaseURL:       withDefault(settings.GetSetting(KeyBaseURL), DefaultBaseURL),
		WalletAddress: settings.GetSetting(KeyWalletAddress),
		PrivateKey:    settings.GetSetting(KeyPrivateKey),
		RPCURL:        settings.GetSetting(KeyRPCURL),
		LLM: LLMConfig{
			Provider: strings.ToLower(withDefault(settings.GetSetting(KeyLLMProvider), DefaultLLMProvider)),
			BaseURL:  settings.GetSetting(KeyLLMBaseURL),
			APIKey:   settings.GetSetting(KeyLLMAPIKey),
			Model:    settings.GetSetting(KeyLLMModel),
		},
		Log: LogConfig{
			Level:  withDefault(settings.GetSetting(KeyLogLevel), DefaultLogLevel),
			Format: withDefault(settings.GetSetting(KeyLogFormat), DefaultLogFormat),
		},
	}

	if strings.TrimSpace(cfg.AuthKey) == "" {
		return nil, apperrors.Configuration("%s is required", KeyAuthKey)
	}

	var err error
	if cfg.RequestTimeout, err = duration(settings, KeyRequestTimeout, DefaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.ExtractTimeout, err = duration(settings, KeyExtractTimeout, DefaultExtractTimeout); err != nil {
		return nil, err
	}

	if cfg.WalletAddress != "" && !common.IsHexAddress(cfg.WalletAddress) {
		log.Warnf("%s does not look like an EVM address: %s", KeyWalletAddress, cfg.WalletAddress)
	}

	log.WithField("base_url", cfg.BaseURL).Info("1inch configuration resolved")
	return cfg, nil
}

// SignerKey parses the configured private key
func (c *Config) SignerKey() (*ecdsa.PrivateKey, error) {
	if c.PrivateKey == "" {
		return nil, fmt.Errorf("%s is not set", KeyPrivateKey)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// SignerAddress derives the EVM address of the configured private key
func (c *Config) SignerAddress() (string, error) {
	key, err := c.SignerKey()
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func duration(settings Settings, key string, def time.Duration) (time.Duration, error) {
	raw := settings.GetSetting(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, apperrors.Configuration("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func withDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
