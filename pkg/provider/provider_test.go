package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneinch-agent/config"
	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/types"
)

func TestFormatTokenAddress(t *testing.T) {
	for _, in := range []string{"eth", "ETH", "Eth", "native", "Native", "NATIVE"} {
		assert.Equal(t, types.NativeTokenAddress, FormatTokenAddress(in), in)
	}

	for _, in := range []string{
		"",
		"DAI",
		"ether",
		" eth",
		"0x6b175474e89094c44da98b954eedeac495271d0f",
		types.NativeTokenAddress,
	} {
		assert.Equal(t, in, FormatTokenAddress(in), in)
	}
}

func TestIsValidNetwork(t *testing.T) {
	for _, id := range types.Networks() {
		assert.True(t, IsValidNetwork(int(id)), id)
	}
	for _, id := range []int{0, -1, 3, 5, 11155111} {
		assert.False(t, IsValidNetwork(id), id)
	}
}

func TestChecksumAddress(t *testing.T) {
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ChecksumAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"))
	assert.Empty(t, ChecksumAddress("0x1234"))
}

func TestInitialize(t *testing.T) {
	p, err := Initialize(&config.Config{AuthKey: "k", BaseURL: config.DefaultBaseURL})
	require.NoError(t, err)
	assert.Equal(t, "k", p.Config().AuthKey)
	assert.True(t, p.IsValidNetwork(1))
	assert.Equal(t, types.NativeTokenAddress, p.FormatTokenAddress("eth"))

	_, err = Initialize(&config.Config{AuthKey: "k", BaseURL: "not a url"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInitialization))

	_, err = Initialize(nil)
	assert.True(t, apperrors.Is(err, apperrors.KindInitialization))
}

func TestFactory(t *testing.T) {
	_, err := Factory(config.MapSettings{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))

	p, err := Factory(config.MapSettings{config.KeyAuthKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseURL, p.Config().BaseURL)
}
