// Package purchase buys the token with ETH through a Uniswap V2 router using
// the connected wallet.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"
	"time"

	"memepi-dapp/helpers"
	"memepi-dapp/metrics"
	"memepi-dapp/notify"
	"memepi-dapp/rpc"
	"memepi-dapp/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrQuote               = errors.New("quote failed")
	ErrTransaction         = errors.New("transaction failed")
	ErrNoChain             = errors.New("no RPC connection")
	ErrInvalidAccount      = errors.New("invalid account")
)

// State is where a Buy currently is.
type State int32

const (
	Idle State = iota
	AwaitingAccounts
	AwaitingQuote
	AwaitingConfirmation
	Settled
)

func (s State) String() string {
	switch s {
	case AwaitingAccounts:
		return "Requesting account access..."
	case AwaitingQuote:
		return "Fetching quote..."
	case AwaitingConfirmation:
		return "Waiting for confirmation..."
	case Settled:
		return "Done"
	default:
		return "Idle"
	}
}

// Request is one purchase.
type Request struct {
	ETHAmount decimal.Decimal
}

// Quote is the router's answer for the amount being spent.
type Quote struct {
	ExpectedTokenOut *big.Int
	MinimumTokenOut  *big.Int
}

// Result describes a mined purchase.
type Result struct {
	Sender   common.Address
	Quote    Quote
	TxHash   common.Hash
	Deadline time.Time
}

// Chain is the read side of the node. *ethclient.Client satisfies it.
type Chain interface {
	ethereum.ContractCaller
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Options struct {
	Router          common.Address
	WrappedNative   common.Address
	Token           common.Address
	Symbol          string
	SlippagePercent decimal.Decimal
	GasLimit        uint64
	Deadline        time.Duration
	ReceiptPoll     time.Duration
}

// DefaultOptions are the mainnet router settings for token.
func DefaultOptions(token common.Address, symbol string) Options {
	return Options{
		Router:          helpers.UniswapV2RouterAddress,
		WrappedNative:   helpers.WETHAddress,
		Token:           token,
		Symbol:          symbol,
		SlippagePercent: decimal.RequireFromString("0.5"),
		GasLimit:        300000,
		Deadline:        300 * time.Second,
		ReceiptPoll:     2 * time.Second,
	}
}

// Flow runs purchases. A Flow serves one Buy at a time; State reflects the latest.
type Flow struct {
	chain    Chain
	opener   wallet.Opener
	notifier notify.Notifier
	logger   *log.Logger
	opts     Options
	state    atomic.Int32
	now      func() time.Time
}

// New builds a flow. chain may be nil until the node is reachable, in which
// case Buy fails at the quote step.
func New(chain Chain, opener wallet.Opener, notifier notify.Notifier, logger *log.Logger, opts Options) *Flow {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 300 * time.Second
	}
	if opts.ReceiptPoll <= 0 {
		opts.ReceiptPoll = 2 * time.Second
	}
	return &Flow{
		chain:    chain,
		opener:   opener,
		notifier: notifier,
		logger:   logger.WithPrefix("purchase"),
		opts:     opts,
		now:      time.Now,
	}
}

// State is safe to call from any goroutine.
func (f *Flow) State() State {
	return State(f.state.Load())
}

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
}

// Options returns the settings the flow was built with.
func (f *Flow) Options() Options { return f.opts }

// Buy spends req.ETHAmount on the token through desc's wallet and waits for the
// transaction to be mined. Except for a missing wallet, every call ends with
// exactly one notification.
func (f *Flow) Buy(ctx context.Context, desc wallet.Descriptor, req Request) (*Result, error) {
	res, err := f.buy(ctx, desc, req)
	f.setState(Settled)

	switch {
	case errors.Is(err, ErrProviderUnavailable):
		metrics.TokenPurchases.WithLabelValues("redirected").Inc()
	case err != nil:
		metrics.TokenPurchases.WithLabelValues("failed").Inc()
		f.logger.Error("buy failed", "wallet", desc.Name, "eth", req.ETHAmount.String(), "err", err)
		f.notifier.Notify("Error", "Failed to buy tokens: "+err.Error(), notify.Error)
	default:
		metrics.TokenPurchases.WithLabelValues("success").Inc()
		f.logger.Info("buy mined", "tx", res.TxHash.Hex(), "eth", req.ETHAmount.String())
		f.notifier.Notify("Success!", fmt.Sprintf("Successfully bought %s tokens for %s ETH", f.opts.Symbol, req.ETHAmount.String()), notify.Success)
	}
	return res, err
}

func (f *Flow) buy(ctx context.Context, desc wallet.Descriptor, req Request) (*Result, error) {
	if !req.ETHAmount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	wei, err := helpers.ToBaseUnits(req.ETHAmount, 18)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	if !desc.Available() {
		f.logger.Info("wallet not available, opening install page", "wallet", desc.Name)
		if f.opener != nil && desc.InstallURL != "" {
			if err := f.opener.Open(desc.InstallURL); err != nil {
				f.logger.Warn("could not open install page", "url", desc.InstallURL, "err", err)
			}
		}
		return nil, ErrProviderUnavailable
	}

	f.setState(AwaitingAccounts)
	accounts, err := desc.Provider.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, wallet.ErrNoAccounts
	}
	if !common.IsHexAddress(accounts[0]) {
		return nil, fmt.Errorf("%w %q", ErrInvalidAccount, accounts[0])
	}
	res := &Result{Sender: common.HexToAddress(accounts[0])}

	f.setState(AwaitingQuote)
	if f.chain == nil {
		return nil, fmt.Errorf("%w: %w", ErrQuote, ErrNoChain)
	}
	path := []common.Address{f.opts.WrappedNative, f.opts.Token}
	amounts, err := helpers.GetAmountsOut(ctx, f.chain, f.opts.Router, wei, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuote, err)
	}
	expected := amounts[len(amounts)-1]
	minOut, err := helpers.MinimumOut(expected, f.opts.SlippagePercent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuote, err)
	}
	res.Quote = Quote{ExpectedTokenOut: expected, MinimumTokenOut: minOut}
	f.logger.Debug("quote", "in_wei", wei.String(), "expected", expected.String(), "min", minOut.String())

	f.setState(AwaitingConfirmation)
	gasPrice, err := f.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas price: %w", ErrTransaction, err)
	}
	res.Deadline = f.now().Add(f.opts.Deadline)
	data, err := helpers.PackSwapExactETHForTokens(minOut, path, res.Sender, big.NewInt(res.Deadline.Unix()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	hash, err := desc.Provider.SendTransaction(ctx, wallet.TxRequest{
		From:     res.Sender,
		To:       f.opts.Router,
		Value:    wei,
		Gas:      f.opts.GasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransaction, err)
	}
	res.TxHash = hash
	f.logger.Info("swap submitted", "tx", hash.Hex(), "wallet", desc.Name)

	receipt, err := rpc.WaitMined(ctx, f.chain, hash, f.opts.ReceiptPoll)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrTransaction, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, fmt.Errorf("%w: transaction reverted", ErrTransaction)
	}
	return res, nil
}
