package rpc

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"memepi-dapp/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// InjectedProvider is a wallet that speaks EIP-1193 over JSON-RPC, e.g. a
// desktop wallet's local bridge endpoint. The wallet holds the keys and signs.
type InjectedProvider struct {
	client *gethrpc.Client
	URL    string
}

var _ wallet.Provider = (*InjectedProvider)(nil)

// DialInjected connects to a wallet endpoint (http, ws or ipc)
func DialInjected(ctx context.Context, url string) (*InjectedProvider, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet %s: %w", url, err)
	}
	return &InjectedProvider{client: c, URL: url}, nil
}

// NewInjectedProvider wraps an existing RPC client
func NewInjectedProvider(c *gethrpc.Client) *InjectedProvider {
	return &InjectedProvider{client: c}
}

func (p *InjectedProvider) Available() bool {
	return p != nil && p.client != nil
}

func (p *InjectedProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// sendTxArgs is the eth_sendTransaction parameter object
type sendTxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

func (p *InjectedProvider) SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error) {
	to := tx.To
	args := sendTxArgs{
		From:     tx.From,
		To:       &to,
		Gas:      hexutil.Uint64(tx.Gas),
		GasPrice: (*hexutil.Big)(tx.GasPrice),
		Value:    (*hexutil.Big)(tx.Value),
		Data:     tx.Data,
	}
	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// EIP-747 parameters
type watchAssetOptions struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

type watchAssetParams struct {
	Type    string            `json:"type"`
	Options watchAssetOptions `json:"options"`
}

func (p *InjectedProvider) WatchAsset(ctx context.Context, asset wallet.Asset) (bool, error) {
	params := watchAssetParams{
		Type: "ERC20",
		Options: watchAssetOptions{
			Address:  asset.Address.Hex(),
			Symbol:   asset.Symbol,
			Decimals: asset.Decimals,
			Image:    asset.Image,
		},
	}
	var added bool
	if err := p.client.CallContext(ctx, &added, "wallet_watchAsset", params); err != nil {
		return false, err
	}
	return added, nil
}

// Close releases the underlying connection
func (p *InjectedProvider) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}

// TxBackend is what KeyProvider needs from the chain
type TxBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyProvider is a development wallet: a local secp256k1 key that signs
// legacy transactions and broadcasts them through a node.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend TxBackend
}

var _ wallet.Provider = (*KeyProvider)(nil)

// NewKeyProvider parses a hex private key (0x prefix optional)
func NewKeyProvider(hexKey string, backend TxBackend) (*KeyProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		backend: backend,
	}, nil
}

// KeyProviderFromEnv loads the key from the named environment variable
func KeyProviderFromEnv(envVar string, backend TxBackend) (*KeyProvider, error) {
	v := os.Getenv(envVar)
	if v == "" {
		return nil, fmt.Errorf("%s not set", envVar)
	}
	return NewKeyProvider(v, backend)
}

// Address is the account this key controls
func (p *KeyProvider) Address() common.Address { return p.address }

func (p *KeyProvider) Available() bool {
	return p != nil && p.backend != nil
}

func (p *KeyProvider) RequestAccounts(context.Context) ([]string, error) {
	return []string{p.address.Hex()}, nil
}

func (p *KeyProvider) SendTransaction(ctx context.Context, req wallet.TxRequest) (common.Hash, error) {
	if req.From != p.address {
		return common.Hash{}, fmt.Errorf("cannot sign for %s", req.From.Hex())
	}
	if req.GasPrice == nil {
		return common.Hash{}, errors.New("gas price required")
	}

	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get chain id: %w", err)
	}
	nonce, err := p.backend.PendingNonceAt(ctx, p.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: req.GasPrice,
		Gas:      req.Gas,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign failed: %w", err)
	}
	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast failed: %w", err)
	}
	return signed.Hash(), nil
}

// WatchAsset has nothing to add a token to; it reports "not added".
func (p *KeyProvider) WatchAsset(context.Context, wallet.Asset) (bool, error) {
	return false, nil
}
