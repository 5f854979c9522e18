package helpers

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Minimal Uniswap V2 router fragment: the read-only quote and the payable ETH->token swap.
const routerABIJSON = `[
	{"name":"getAmountsOut","type":"function","stateMutability":"view",
	 "inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]},
	{"name":"swapExactETHForTokens","type":"function","stateMutability":"payable",
	 "inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

// RouterABI is the parsed router fragment
var RouterABI = mustParseABI(routerABIJSON)

// Well-known mainnet addresses
var (
	// UniswapV2RouterAddress is the Uniswap V2 Router02
	UniswapV2RouterAddress = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	// WETHAddress is wrapped ether
	WETHAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	// USDCAddress is only used by the live quote test
	USDCAddress = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("parse router abi: %v", err))
	}
	return parsed
}

// SlippageFactor returns 1000 - percent*10, the per-mille multiplier applied
// to a quote. Only percents with at most one decimal place in [0, 100) are accepted.
func SlippageFactor(percent decimal.Decimal) (int64, error) {
	if percent.IsNegative() {
		return 0, fmt.Errorf("slippage %s%% is negative", percent)
	}
	f := decimal.NewFromInt(1000).Sub(percent.Mul(decimal.NewFromInt(10)))
	if !f.IsInteger() {
		return 0, fmt.Errorf("slippage %s%% must have at most one decimal place", percent)
	}
	if !f.IsPositive() {
		return 0, fmt.Errorf("slippage %s%% must be below 100%%", percent)
	}
	return f.IntPart(), nil
}

// MinimumOut applies slippage to an expected output: expected * factor / 1000, rounded down.
func MinimumOut(expected *big.Int, percent decimal.Decimal) (*big.Int, error) {
	if expected == nil || expected.Sign() < 0 {
		return nil, fmt.Errorf("invalid expected output %v", expected)
	}
	factor, err := SlippageFactor(percent)
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(expected, big.NewInt(factor))
	return out.Div(out, big.NewInt(1000)), nil
}

// GetAmountsOut asks the router what amountIn yields along path, via eth_call.
// The last element is the output for the final token in path.
func GetAmountsOut(ctx context.Context, caller ethereum.ContractCaller, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	data, err := RouterABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("pack getAmountsOut: %w", err)
	}

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &router, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("getAmountsOut call: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("getAmountsOut returned no data (is %s a router?)", router.Hex())
	}

	values, err := RouterABI.Unpack("getAmountsOut", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getAmountsOut: %w", err)
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, fmt.Errorf("getAmountsOut returned %d amounts for a %d-hop path", len(amounts), len(path))
	}
	return amounts, nil
}

// PackSwapExactETHForTokens builds the calldata for a payable ETH->token swap
func PackSwapExactETHForTokens(amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) ([]byte, error) {
	data, err := RouterABI.Pack("swapExactETHForTokens", amountOutMin, path, to, deadline)
	if err != nil {
		return nil, fmt.Errorf("pack swapExactETHForTokens: %w", err)
	}
	return data, nil
}
