package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "0x3140000000000000000000000000000000000001"

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "MEPI", cfg.Token.Symbol)
	assert.Equal(t, uint8(18), cfg.Token.Decimals)
	assert.Equal(t, uint64(300000), cfg.Dex.GasLimit)
	assert.True(t, cfg.Dex.BuySlippage.Equal(decimal.RequireFromString("0.5")))

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dex.Router, again.Dex.Router)
	assert.True(t, again.Dex.BuySlippage.Equal(cfg.Dex.BuySlippage))
}

func TestLoadOrCreateBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg, err := LoadOrCreate(path)
	require.Error(t, err)
	assert.Equal(t, "MEPI", cfg.Token.Symbol)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"rpc_url":"http://localhost:8545","logger":true}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.True(t, cfg.Logger)
	assert.Equal(t, "MEPI", cfg.Token.Symbol)
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MEPI_TOKEN_ADDRESS="+testToken+"\n"), 0644))
	t.Setenv("ETH_RPC_URL", "http://127.0.0.1:8545")
	t.Setenv("MEPI_TOKEN_ADDRESS", "")
	os.Unsetenv("MEPI_TOKEN_ADDRESS")

	cfg := DefaultConfig()
	ApplyEnv(&cfg, envFile)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, testToken, cfg.Token.Address)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "placeholder token address must not validate")

	cfg.Token.Address = testToken
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Dex.BuySlippage = decimal.RequireFromString("0.25")
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Dex.GasLimit = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Dex.Router = "0x123"
	assert.Error(t, bad.Validate())
}

func TestPageString(t *testing.T) {
	assert.Equal(t, "Wallets", PageWallets.String())
	assert.Equal(t, "Buy", PageBuy.String())
	assert.Equal(t, "Token", PageToken.String())
}
