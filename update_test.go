package main

import (
	"io"
	"testing"

	"memepi-dapp/config"
	"memepi-dapp/notify"
	"memepi-dapp/purchase"
	"memepi-dapp/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *model {
	t.Helper()
	logger := log.New(io.Discard)
	queue := notify.NewQueue(logger)
	opener := wallet.OpenerFunc(func(string) error { return nil })
	cfg := config.DefaultConfig()
	cfg.Token.Address = "0x3140000000000000000000000000000000000001"

	a := &app{
		cfg:        cfg,
		configPath: t.TempDir() + "/" + config.FileName,
		logger:     logger,
		logBuffer:  &logBuffer{},
		queue:      queue,
		wallets:    wallet.NewService(wallet.Defaults(nil), wallet.NewSession(), opener, queue, logger),
		flow:       purchase.New(nil, opener, queue, logger, purchase.DefaultOptions(common.Address{}, "MEPI")),
	}
	m := newModel(a)
	return &m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConnectIgnoredWhileInFlight(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.connecting)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "second connect must be ignored")

	m.Update(walletConnectedMsg{id: wallet.MetaMask, outcome: wallet.OutcomeRedirected})
	assert.False(t, m.connecting)
}

func TestWalletSelection(t *testing.T) {
	m := testModel(t)

	m.Update(runes("3"))
	assert.Equal(t, 2, m.selectedWallet)
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.selectedWallet)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.selectedWallet)
}

func TestDisconnectOnlyWhenConnected(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd)
}

func TestPageSwitching(t *testing.T) {
	m := testModel(t)

	m.Update(runes("b"))
	assert.Equal(t, config.PageBuy, m.activePage)
	m.Update(runes("t"))
	assert.Equal(t, config.PageToken, m.activePage)
	m.Update(runes("w"))
	assert.Equal(t, config.PageWallets, m.activePage)
}

func TestBuyFormOpensAndCancels(t *testing.T) {
	m := testModel(t)
	m.Update(runes("b"))

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.buyForm)
	assert.True(t, m.textInputActive())

	// page keys go to the form while it is open
	m.Update(runes("w"))
	assert.Equal(t, config.PageBuy, m.activePage)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.buyForm)
}

func TestBuyBlockedByConfigError(t *testing.T) {
	m := testModel(t)
	m.cfgErr = assert.AnError
	m.Update(runes("b"))

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.buyForm)
}

func TestToastShowAndDismiss(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(notify.ShowMsg{Notification: notify.Notification{ID: 7, Title: "Copied!", Severity: notify.Info}})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.toasts.Len())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, m.toasts.Len())

	// the expiry tick for the dismissed toast is a no-op
	m.Update(notify.ExpiredMsg{ID: 7})
	assert.Equal(t, 0, m.toasts.Len())
}

func TestBuyFinishedClearsBusy(t *testing.T) {
	m := testModel(t)
	m.buying = true

	m.Update(buyFinishedMsg{err: purchase.ErrProviderUnavailable})
	assert.False(t, m.buying)
	assert.Contains(t, m.lastBuyErr, "install page")
}

func TestLogBufferConcurrentWrites(t *testing.T) {
	b := &logBuffer{}
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_, _ = b.Write([]byte("x"))
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Len(t, b.String(), 400)
	b.Reset()
	assert.Empty(t, b.String())
}
