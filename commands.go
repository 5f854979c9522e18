package main

import (
	"context"
	"time"

	"memepi-dapp/config"
	"memepi-dapp/notify"
	"memepi-dapp/purchase"
	"memepi-dapp/rpc"
	"memepi-dapp/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

const (
	// wallets wait on the user, so prompts get generous timeouts
	connectTimeout = 2 * time.Minute
	buyTimeout     = 10 * time.Minute
)

// pingRPC checks that the node answers
func pingRPC(client *rpc.Client) tea.Cmd {
	return func() tea.Msg {
		id, err := rpc.Ping(client, 8*time.Second)
		return rpcConnectedMsg{chainID: id, err: err}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// connectWallet runs Service.Connect for id
func connectWallet(svc *wallet.Service, id wallet.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		outcome, err := svc.Connect(ctx, id)
		return walletConnectedMsg{id: id, outcome: outcome, err: err}
	}
}

// disconnectWallet clears the session
func disconnectWallet(svc *wallet.Service) tea.Cmd {
	return func() tea.Msg {
		svc.Disconnect()
		return walletDisconnectedMsg{}
	}
}

// buyTokens runs one purchase through the active wallet
func buyTokens(svc *wallet.Service, flow *purchase.Flow, amount decimal.Decimal) tea.Cmd {
	return func() tea.Msg {
		desc, err := svc.ActiveDescriptor()
		if err != nil {
			return buyFinishedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), buyTimeout)
		defer cancel()
		res, err := flow.Buy(ctx, desc, purchase.Request{ETHAmount: amount})
		return buyFinishedMsg{result: res, err: err}
	}
}

// addToken asks the active wallet to watch the token
func addToken(svc *wallet.Service, asset wallet.Asset) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return tokenAddedMsg{err: svc.AddToken(ctx, asset)}
	}
}

// loadBalances loads ETH and token balances for owner
func loadBalances(client *rpc.Client, owner, tok common.Address) tea.Cmd {
	return func() tea.Msg {
		return balancesLoadedMsg{b: rpc.LoadBalances(client, owner, tok)}
	}
}

// copyTokenAddress copies the token address to the clipboard
func copyTokenAddress(addr string, n notify.Notifier) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(addr); err != nil {
			return clipboardCopiedMsg{err: err}
		}
		n.Notify("Copied!", "Token address copied to clipboard", notify.Info)
		return clipboardCopiedMsg{}
	}
}

// -------------------- MODEL HELPER METHODS --------------------

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}
	m.logViewport.SetContent(m.logBuffer.String())
	// Scroll to bottom to show latest entries
	m.logViewport.GotoBottom()
}

// textInputActive returns true if the buy form is taking keys
func (m model) textInputActive() bool {
	return m.buyForm != nil
}

// saveConfig persists the logger toggle. It rewrites the file as loaded so
// env overrides are not written back.
func (m *model) saveConfig() {
	m.cfg.Logger = m.logEnabled
	onDisk, err := config.Load(m.configPath)
	if err != nil {
		onDisk = config.DefaultConfig()
	}
	onDisk.Logger = m.logEnabled
	if err := config.Save(m.configPath, onDisk); err != nil {
		m.logger.Error("saving config failed", "path", m.configPath, "err", err)
	}
}

// refreshBalances reloads balances for the connected account, if any
func (m *model) refreshBalances() tea.Cmd {
	addr, ok := m.wallets.Session().Address()
	if !ok || m.ethClient == nil || !common.IsHexAddress(addr) {
		m.balances = nil
		return nil
	}
	m.balancesLoading = true
	return loadBalances(m.ethClient, common.HexToAddress(addr), m.cfg.TokenAddress())
}
