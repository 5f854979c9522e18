package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"memepi-dapp/helpers"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// FileName is the config file kept in the user's home directory
const FileName = ".memepi-dapp.json"

// Config represents the application configuration
type Config struct {
	RPCURL      string        `json:"rpc_url"`
	Token       Token         `json:"token"`
	Dex         Dex           `json:"dex"`
	Wallets     []WalletEntry `json:"wallets"`
	Logger      bool          `json:"logger"`
	MetricsAddr string        `json:"metrics_addr,omitempty"`
}

// Token describes the token being sold
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

// Dex holds the router settings used to buy
type Dex struct {
	Router      string          `json:"router"`
	WETH        string          `json:"weth"`
	BuySlippage decimal.Decimal `json:"buy_slippage"`
	GasLimit    uint64          `json:"gas_limit"`
}

// WalletEntry binds a wallet brand to a provider. Endpoint is an EIP-1193
// JSON-RPC URL; KeyEnv names an env var holding a development private key.
type WalletEntry struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint,omitempty"`
	KeyEnv   string `json:"key_env,omitempty"`
}

// DefaultPath is ~/.memepi-dapp.json, or the working directory if home is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads the config from the specified path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		RPCURL: "https://ethereum-rpc.publicnode.com",
		Token: Token{
			Address:  "",
			Symbol:   "MEPI",
			Decimals: 18,
			Image:    "https://gateway.pinata.cloud/ipfs/QmeTKApmA3xpAVR5YVU6tEVaw76Hc5uAcTo1Wg7bwhueF3",
		},
		Dex: Dex{
			Router:      helpers.UniswapV2RouterAddress.Hex(),
			WETH:        helpers.WETHAddress.Hex(),
			BuySlippage: decimal.RequireFromString("0.5"),
			GasLimit:    300000,
		},
		Wallets: []WalletEntry{
			{ID: "metamask", KeyEnv: "PRIVATE_KEY"},
		},
		Logger: false,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found.
// A file that cannot be parsed yields the defaults and the parse error.
func LoadOrCreate(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
		return cfg, Save(path, cfg)
	}
	return DefaultConfig(), err
}

// ApplyEnv loads .env files (missing files are ignored) and overlays
// ETH_RPC_URL and MEPI_TOKEN_ADDRESS onto cfg.
func ApplyEnv(cfg *Config, envFiles ...string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	if v := os.Getenv("ETH_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("MEPI_TOKEN_ADDRESS"); v != "" {
		cfg.Token.Address = v
	}
}

// Validate reports the first setting that would make a purchase impossible
func (c Config) Validate() error {
	if !common.IsHexAddress(c.Token.Address) {
		return fmt.Errorf("token address %q is not a valid address (set MEPI_TOKEN_ADDRESS)", c.Token.Address)
	}
	if !common.IsHexAddress(c.Dex.Router) {
		return fmt.Errorf("router address %q is not a valid address", c.Dex.Router)
	}
	if !common.IsHexAddress(c.Dex.WETH) {
		return fmt.Errorf("weth address %q is not a valid address", c.Dex.WETH)
	}
	if _, err := helpers.SlippageFactor(c.Dex.BuySlippage); err != nil {
		return err
	}
	if c.Dex.GasLimit == 0 {
		return errors.New("gas limit must be greater than zero")
	}
	if c.Token.Symbol == "" {
		return errors.New("token symbol is empty")
	}
	return nil
}

// TokenAddress is the parsed token address; zero when invalid
func (c Config) TokenAddress() common.Address {
	return common.HexToAddress(c.Token.Address)
}
