package purchase

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"memepi-dapp/helpers"
	"memepi-dapp/notify"
	"memepi-dapp/wallet"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testToken  = common.HexToAddress("0x3140000000000000000000000000000000000001")
	testSender = "0xAbCd000000000000000000000000000000001234"
)

type fakeChain struct {
	quote      *big.Int
	quoteErr   error
	status     uint64
	calls      []ethereum.CallMsg
	receiptHit int
}

func (c *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.calls = append(c.calls, msg)
	if c.quoteErr != nil {
		return nil, c.quoteErr
	}
	return helpers.RouterABI.Methods["getAmountsOut"].Outputs.Pack([]*big.Int{big.NewInt(0), c.quote})
}

func (c *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(30e9), nil
}

func (c *fakeChain) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	c.receiptHit++
	if c.receiptHit == 1 {
		return nil, ethereum.NotFound
	}
	return &types.Receipt{Status: c.status}, nil
}

type fakeWallet struct {
	available  bool
	accountErr error
	accounts   []string
	sendErr    error
	sent       []wallet.TxRequest
}

func (w *fakeWallet) Available() bool { return w.available }

func (w *fakeWallet) RequestAccounts(context.Context) ([]string, error) {
	if w.accountErr != nil {
		return nil, w.accountErr
	}
	if w.accounts != nil {
		return w.accounts, nil
	}
	return []string{testSender}, nil
}

func (w *fakeWallet) SendTransaction(_ context.Context, tx wallet.TxRequest) (common.Hash, error) {
	w.sent = append(w.sent, tx)
	if w.sendErr != nil {
		return common.Hash{}, w.sendErr
	}
	return common.HexToHash("0xfeed"), nil
}

func (w *fakeWallet) WatchAsset(context.Context, wallet.Asset) (bool, error) { return false, nil }

type recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recorder) Notify(title, message string, sev notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notify.Notification{Title: title, Message: message, Severity: sev})
}

type opened struct{ urls []string }

func (o *opened) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func newFlow(chain Chain) (*Flow, *recorder, *opened) {
	n := &recorder{}
	o := &opened{}
	opts := DefaultOptions(testToken, "MEPI")
	opts.ReceiptPoll = time.Millisecond
	f := New(chain, o, n, nil, opts)
	f.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return f, n, o
}

func descriptor(p wallet.Provider) wallet.Descriptor {
	return wallet.Descriptor{ID: wallet.MetaMask, Name: "MetaMask", InstallURL: wallet.InstallURL(wallet.MetaMask), Provider: p}
}

func TestBuySuccess(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1000), status: types.ReceiptStatusSuccessful}
	w := &fakeWallet{available: true}
	f, n, _ := newFlow(chain)

	res, err := f.Buy(context.Background(), descriptor(w), Request{ETHAmount: decimal.RequireFromString("0.1")})
	require.NoError(t, err)
	assert.Equal(t, Settled, f.State())

	assert.Equal(t, common.HexToAddress(testSender), res.Sender)
	assert.Equal(t, "1000", res.Quote.ExpectedTokenOut.String())
	assert.Equal(t, "995", res.Quote.MinimumTokenOut.String())
	assert.Equal(t, time.Unix(1_700_000_300, 0), res.Deadline)
	assert.Equal(t, common.HexToHash("0xfeed"), res.TxHash)

	// quote goes to the router with WETH -> token
	require.Len(t, chain.calls, 1)
	assert.Equal(t, helpers.UniswapV2RouterAddress, *chain.calls[0].To)

	require.Len(t, w.sent, 1)
	tx := w.sent[0]
	assert.Equal(t, helpers.UniswapV2RouterAddress, tx.To)
	assert.Equal(t, "100000000000000000", tx.Value.String())
	assert.Equal(t, uint64(300000), tx.Gas)
	assert.Equal(t, "30000000000", tx.GasPrice.String())

	method := helpers.RouterABI.Methods["swapExactETHForTokens"]
	assert.Equal(t, method.ID, tx.Data[:4])
	args, err := method.Inputs.Unpack(tx.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, "995", args[0].(*big.Int).String())
	assert.Equal(t, []common.Address{helpers.WETHAddress, testToken}, args[1].([]common.Address))
	assert.Equal(t, common.HexToAddress(testSender), args[2].(common.Address))
	assert.Equal(t, int64(1_700_000_300), args[3].(*big.Int).Int64())

	require.Len(t, n.items, 1)
	assert.Equal(t, "Success!", n.items[0].Title)
	assert.Equal(t, "Successfully bought MEPI tokens for 0.1 ETH", n.items[0].Message)
	assert.Equal(t, notify.Success, n.items[0].Severity)
}

func TestBuyQuoteFailureNeverWrites(t *testing.T) {
	chain := &fakeChain{quoteErr: errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY")}
	w := &fakeWallet{available: true}
	f, n, _ := newFlow(chain)

	_, err := f.Buy(context.Background(), descriptor(w), Request{ETHAmount: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, ErrQuote)
	assert.Empty(t, w.sent)

	require.Len(t, n.items, 1)
	assert.Equal(t, "Error", n.items[0].Title)
	assert.Contains(t, n.items[0].Message, "Failed to buy tokens: ")
	assert.Contains(t, n.items[0].Message, "INSUFFICIENT_LIQUIDITY")
}

func TestBuyWithoutChain(t *testing.T) {
	w := &fakeWallet{available: true}
	f, n, _ := newFlow(nil)

	_, err := f.Buy(context.Background(), descriptor(w), Request{ETHAmount: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, ErrQuote)
	assert.ErrorIs(t, err, ErrNoChain)
	assert.Empty(t, w.sent)
	assert.Len(t, n.items, 1)
}

func TestBuyInvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "-1", "0.0000000000000000001"} {
		t.Run(amount, func(t *testing.T) {
			w := &fakeWallet{available: true}
			f, n, _ := newFlow(&fakeChain{quote: big.NewInt(1)})

			_, err := f.Buy(context.Background(), descriptor(w), Request{ETHAmount: decimal.RequireFromString(amount)})
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Empty(t, w.sent)
			require.Len(t, n.items, 1)
			assert.Equal(t, notify.Error, n.items[0].Severity)
		})
	}
}

func TestBuyUnavailableOpensInstallPage(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1)}
	f, n, o := newFlow(chain)

	_, err := f.Buy(context.Background(), descriptor(&fakeWallet{}), Request{ETHAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, []string{"https://metamask.io/download/"}, o.urls)
	assert.Empty(t, n.items)
	assert.Empty(t, chain.calls)
}

func TestBuyWalletRejects(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1)}
	f, n, _ := newFlow(chain)

	_, err := f.Buy(context.Background(), descriptor(&fakeWallet{available: true, accountErr: errors.New("User rejected the request.")}), Request{ETHAmount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Empty(t, chain.calls)
	require.Len(t, n.items, 1)
	assert.Equal(t, "Failed to buy tokens: User rejected the request.", n.items[0].Message)
}

func TestBuyInvalidAccount(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1)}
	f, n, _ := newFlow(chain)

	_, err := f.Buy(context.Background(), descriptor(&fakeWallet{available: true, accounts: []string{"not-an-address"}}), Request{ETHAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidAccount)
	assert.NotErrorIs(t, err, wallet.ErrNoAccounts)
	assert.Empty(t, chain.calls)
	require.Len(t, n.items, 1)
	assert.Equal(t, `Failed to buy tokens: invalid account "not-an-address"`, n.items[0].Message)
}

func TestBuySendRejected(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1000)}
	w := &fakeWallet{available: true, sendErr: errors.New("User denied transaction signature.")}
	f, n, _ := newFlow(chain)

	_, err := f.Buy(context.Background(), descriptor(w), Request{ETHAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, 0, chain.receiptHit)
	require.Len(t, n.items, 1)
	assert.Contains(t, n.items[0].Message, "User denied transaction signature.")
}

func TestBuyReverted(t *testing.T) {
	chain := &fakeChain{quote: big.NewInt(1000), status: types.ReceiptStatusFailed}
	f, n, _ := newFlow(chain)

	res, err := f.Buy(context.Background(), descriptor(&fakeWallet{available: true}), Request{ETHAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrTransaction)
	require.NotNil(t, res)
	assert.Equal(t, common.HexToHash("0xfeed"), res.TxHash)
	require.Len(t, n.items, 1)
	assert.Equal(t, "Failed to buy tokens: transaction failed: transaction reverted", n.items[0].Message)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Fetching quote...", AwaitingQuote.String())
	f, _, _ := newFlow(nil)
	assert.Equal(t, Idle, f.State())
}
