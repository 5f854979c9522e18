package main

import (
	"path/filepath"
	"testing"

	"memepi-dapp/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowOptionsKeepsZeroSlippage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dex.BuySlippage = decimal.Zero

	opts := flowOptions(cfg)
	assert.True(t, opts.SlippagePercent.IsZero(), "got %s", opts.SlippagePercent)
	assert.Equal(t, cfg.Dex.GasLimit, opts.GasLimit)
	assert.Equal(t, cfg.Token.Symbol, opts.Symbol)
}

func TestSetupUsesConfiguredSlippage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("ETH_RPC_URL", "http://127.0.0.1:1")
	t.Setenv("MEPI_TOKEN_ADDRESS", "0x3140000000000000000000000000000000000001")

	cfg := config.DefaultConfig()
	cfg.Dex.BuySlippage = decimal.Zero
	require.NoError(t, config.Save(filepath.Join(home, config.FileName), cfg))

	a := setup()
	defer a.close()

	require.NoError(t, a.cfgErr)
	assert.True(t, a.cfg.Dex.BuySlippage.IsZero())
	assert.True(t, a.flow.Options().SlippagePercent.Equal(a.cfg.Dex.BuySlippage),
		"flow slippage %s, config %s", a.flow.Options().SlippagePercent, a.cfg.Dex.BuySlippage)
}
