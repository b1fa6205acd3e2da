package cmd

import (
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	apperrors "oneinch-agent/pkg/errors"
)

func TestErrorMessage(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		err     error
		want    string
		wantFix bool
	}{
		{name: "configuration", err: apperrors.Configuration("ONEINCH_AUTH_KEY is required"), want: "Configuration error: ONEINCH_AUTH_KEY is required", wantFix: true},
		{name: "initialization", err: apperrors.New(apperrors.KindInitialization, "bad base URL"), want: "Configuration error: bad base URL", wantFix: true},
		{name: "remote", err: apperrors.Remote("insufficient liquidity", errors.New("API returned status code 400")), want: "1inch error: insufficient liquidity"},
		{name: "plain", err: errors.New("invalid amount"), want: "Error: invalid amount"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := errorMessage(tc.err)
			assert.Contains(t, got, tc.want)
			if tc.wantFix {
				assert.Contains(t, got, "oneinch-agent config")
			} else {
				assert.NotContains(t, got, "oneinch-agent config")
			}
		})
	}
}
