package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "oneinch-agent/pkg/errors"
)

func TestResolveRequiresAuthKey(t *testing.T) {
	cases := []struct {
		name     string
		settings MapSettings
	}{
		{name: "absent", settings: MapSettings{}},
		{name: "empty", settings: MapSettings{KeyAuthKey: ""}},
		{name: "blank", settings: MapSettings{KeyAuthKey: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Resolve(tc.settings)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
		})
	}

	_, err := Resolve(nil)
	assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(MapSettings{KeyAuthKey: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AuthKey)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.WalletAddress)
	assert.Empty(t, cfg.PrivateKey)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultExtractTimeout, cfg.ExtractTimeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestResolveOverrides(t *testing.T) {
	cfg, err := Resolve(MapSettings{
		KeyAuthKey:        "secret",
		KeyBaseURL:        "http://localhost:9000/fusion-plus",
		KeyWalletAddress:  "0xfa80cd9b3becc0b4403b0f421384724f2810775f",
		KeyRequestTimeout: "5s",
		KeyLLMProvider:    "Ollama",
		KeyRPCURL:         "http://localhost:8545",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)

	assert.Equal(t, "http://localhost:9000/fusion-plus", cfg.BaseURL)
	assert.Equal(t, "0xfa80cd9b3becc0b4403b0f421384724f2810775f", cfg.WalletAddress)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
}

func TestResolveRejectsBadTimeout(t *testing.T) {
	_, err := Resolve(MapSettings{KeyAuthKey: "secret", KeyExtractTimeout: "soon"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
}

func TestResolveLogsOnce(t *testing.T) {
	logger, hook := test.NewNullLogger()
	SetLogger(logger)
	defer SetLogger(logrus.StandardLogger())

	_, err := Resolve(MapSettings{KeyAuthKey: "secret"})
	require.NoError(t, err)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestSignerAddress(t *testing.T) {
	// well-known hardhat account #0
	cfg := &Config{PrivateKey: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"}
	addr, err := cfg.SignerAddress()
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr)

	_, err = (&Config{}).SignerAddress()
	assert.Error(t, err)

	_, err = (&Config{PrivateKey: "not-a-key"}).SignerAddress()
	assert.Error(t, err)
}

func TestViperSettingsReadsEnvironment(t *testing.T) {
	t.Setenv(KeyAuthKey, "from-env")
	s := NewViperSettings()
	assert.Equal(t, "from-env", s.GetSetting(KeyAuthKey))

	s.Set(KeyWalletAddress, "0xabc")
	assert.Equal(t, "0xabc", s.GetSetting(KeyWalletAddress))
}
