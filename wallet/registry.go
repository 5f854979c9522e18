// Package wallet models the supported wallet brands and the single
// process-wide wallet session.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupportedWallet is returned for wallet ids outside the registry.
var ErrUnsupportedWallet = errors.New("Unsupported wallet type")

// ErrNoAccounts is returned when a provider grants access to zero accounts.
var ErrNoAccounts = errors.New("no accounts returned")

// ID identifies a wallet brand.
type ID int

const (
	MetaMask ID = iota
	Binance
	OKX
)

func (id ID) String() string {
	switch id {
	case MetaMask:
		return "metamask"
	case Binance:
		return "binance"
	case OKX:
		return "okx"
	default:
		return fmt.Sprintf("wallet(%d)", int(id))
	}
}

// metricLabel is String for known brands and "unknown" otherwise.
func (id ID) metricLabel() string {
	switch id {
	case MetaMask, Binance, OKX:
		return id.String()
	}
	return "unknown"
}

// ParseID maps "metamask", "binance" or "okx" (any case) to an ID.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metamask":
		return MetaMask, nil
	case "binance":
		return Binance, nil
	case "okx":
		return OKX, nil
	}
	return 0, ErrUnsupportedWallet
}

// TxRequest is what the flow hands to a wallet for signing and broadcast.
type TxRequest struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Data     []byte
}

// Asset describes an ERC20 token for wallet_watchAsset.
type Asset struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
	Image    string
}

// Provider is the EIP-1193 surface a wallet brand exposes.
type Provider interface {
	// Available reports whether the wallet is installed/reachable.
	Available() bool
	// RequestAccounts is eth_requestAccounts. The wallet may prompt the user.
	RequestAccounts(ctx context.Context) ([]string, error)
	// SendTransaction is eth_sendTransaction. It returns once the wallet has broadcast.
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
	// WatchAsset is wallet_watchAsset. false means the user declined.
	WatchAsset(ctx context.Context, asset Asset) (bool, error)
}

// Descriptor is one row of the registry.
type Descriptor struct {
	ID         ID
	Name       string
	Icon       string
	InstallURL string
	Provider   Provider
}

// Available reports whether the brand's provider can be used.
func (d Descriptor) Available() bool {
	return d.Provider != nil && d.Provider.Available()
}

// Connect requests account access and returns the first account.
func (d Descriptor) Connect(ctx context.Context) (string, error) {
	if d.Provider == nil {
		return "", fmt.Errorf("%s connection failed: no provider", d.Name)
	}
	accounts, err := d.Provider.RequestAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("%s connection failed: %w", d.Name, err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("%s connection failed: %w", d.Name, ErrNoAccounts)
	}
	return accounts[0], nil
}

// Registry is the fixed table of supported wallets.
type Registry struct {
	byID map[ID]Descriptor
}

// NewRegistry builds a registry; a later descriptor with the same ID wins.
func NewRegistry(descs ...Descriptor) *Registry {
	r := &Registry{byID: make(map[ID]Descriptor, len(descs))}
	for _, d := range descs {
		r.byID[d.ID] = d
	}
	return r
}

// Lookup returns the descriptor for id or ErrUnsupportedWallet.
func (r *Registry) Lookup(id ID) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, ErrUnsupportedWallet
	}
	return d, nil
}

// All lists descriptors ordered by ID.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InstallURL is where users get a brand's wallet.
func InstallURL(id ID) string {
	switch id {
	case MetaMask:
		return "https://metamask.io/download/"
	case Binance:
		return "https://www.bnbchain.org/en/wallet-direct"
	case OKX:
		return "https://www.okx.com/web3"
	}
	return ""
}

// Defaults builds the MetaMask/Binance/OKX table. Brands without an entry in
// providers get a provider that is never available.
func Defaults(providers map[ID]Provider) *Registry {
	pick := func(id ID) Provider {
		if p, ok := providers[id]; ok && p != nil {
			return p
		}
		return unavailable{}
	}
	return NewRegistry(
		Descriptor{ID: MetaMask, Name: "MetaMask", Icon: "🦊", InstallURL: InstallURL(MetaMask), Provider: pick(MetaMask)},
		Descriptor{ID: Binance, Name: "Binance Wallet", Icon: "🪙", InstallURL: InstallURL(Binance), Provider: pick(Binance)},
		Descriptor{ID: OKX, Name: "OKX Wallet", Icon: "👛", InstallURL: InstallURL(OKX), Provider: pick(OKX)},
	)
}

// errUnavailable is never surfaced; callers check Available first
var errUnavailable = errors.New("wallet not installed")

type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) RequestAccounts(context.Context) ([]string, error) {
	return nil, errUnavailable
}

func (unavailable) SendTransaction(context.Context, TxRequest) (common.Hash, error) {
	return common.Hash{}, errUnavailable
}

func (unavailable) WatchAsset(context.Context, Asset) (bool, error) {
	return false, errUnavailable
}
