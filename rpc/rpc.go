package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps an Ethereum RPC client
type Client struct {
	*ethclient.Client
	URL string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to an Ethereum RPC endpoint
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	if url == "" {
		return ConnectResult{Error: errors.New("no RPC URL configured (set ETH_RPC_URL)")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	return ConnectResult{
		Client: &Client{
			Client: client,
			URL:    url,
		},
		Error: nil,
	}
}

// Ping verifies the endpoint answers and returns its chain ID
func Ping(client *Client, timeout time.Duration) (*big.Int, error) {
	if client == nil || client.Client == nil {
		return nil, errors.New("no RPC client")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.ChainID(ctx)
}

// Balances is what the token page shows for the connected account
type Balances struct {
	Address    string
	EthWei     *big.Int
	TokenBase  *big.Int
	LoadedAt   time.Time
	ErrMessage string
}

// LoadBalances fetches the ETH balance and the ERC20 balance of token for owner
func LoadBalances(client *Client, owner, token common.Address) Balances {
	return LoadBalancesWithTimeout(client, owner, token, 12*time.Second)
}

// LoadBalancesWithTimeout fetches balances with a custom timeout
func LoadBalancesWithTimeout(client *Client, owner, token common.Address, timeout time.Duration) Balances {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b := Balances{
		Address:   owner.Hex(),
		EthWei:    big.NewInt(0),
		TokenBase: big.NewInt(0),
		LoadedAt:  time.Now(),
	}

	if client == nil || client.Client == nil {
		b.ErrMessage = "No RPC client (set ETH_RPC_URL)."
		return b
	}

	wei, err := client.BalanceAt(ctx, owner, nil)
	if err != nil {
		b.ErrMessage = "Failed to load ETH balance."
		return b
	}
	b.EthWei = wei

	bal, err := erc20BalanceOf(ctx, client.Client, token, owner)
	if err != nil {
		b.ErrMessage = "Failed to load token balance."
		return b
	}
	b.TokenBase = bal
	return b
}

// Minimal ERC20 balanceOf via eth_call.
var (
	// balanceOf(address) methodID = keccak256("balanceOf(address)")[:4]
	balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}
)

func erc20BalanceOf(ctx context.Context, caller ethereum.ContractCaller, token common.Address, owner common.Address) (*big.Int, error) {
	// calldata = selector + 32-byte left-padded address
	padded := common.LeftPadBytes(owner.Bytes(), 32)
	data := append(append([]byte{}, balanceOfSelector...), padded...)

	msg := ethereum.CallMsg{
		To:   &token,
		Data: data,
	}
	out, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(out), nil
}

// ReceiptFetcher is the part of ethclient WaitMined needs
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitMined polls for the receipt of hash until it is found or ctx ends.
// A not-yet-mined transaction reports ethereum.NotFound; any other error ends the wait.
func WaitMined(ctx context.Context, b ReceiptFetcher, hash common.Hash, poll time.Duration) (*types.Receipt, error) {
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := b.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// EIP681 builds an "ethereum:<address>@<chainId>" URI, e.g. for a QR code.
// A nil or zero chainID leaves the chain part off.
func EIP681(addr common.Address, chainID *big.Int) string {
	uri := "ethereum:" + addr.Hex()
	if chainID != nil && chainID.Sign() > 0 {
		uri += "@" + chainID.String()
	}
	return uri
}
