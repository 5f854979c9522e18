package main

import (
	"errors"
	"fmt"

	"memepi-dapp/config"
	"memepi-dapp/helpers"
	"memepi-dapp/notify"
	"memepi-dapp/purchase"
	"memepi-dapp/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// -------------------- TEMP FORM STORAGE --------------------
// Temporary form field storage (package-level to avoid pointer-to-copy issues)
var tempBuyAmount string

func (m *model) createBuyForm() {
	tempBuyAmount = ""

	m.buyForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (ETH)").
				Description(fmt.Sprintf("ETH to spend on %s, max slippage %s%%", m.cfg.Token.Symbol, m.cfg.Dex.BuySlippage.String())).
				Value(&tempBuyAmount).
				Placeholder("0.1").
				Validate(func(s string) error {
					d, err := helpers.ParseAmount(s)
					if err != nil {
						return err
					}
					if _, err := helpers.ToBaseUnits(d, 18); err != nil {
						return err
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.buyForm.Init()
}

// updateBuyForm feeds msg to the buy form and starts the purchase once it completes
func (m *model) updateBuyForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.buyForm.Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.buyForm = f

	switch m.buyForm.State {
	case huh.StateCompleted:
		m.buyForm = nil
		amount, err := helpers.ParseAmount(tempBuyAmount)
		if err != nil {
			m.lastBuyErr = err.Error()
			return m, nil
		}
		if m.buying {
			m.logger.Debug("purchase already in flight, ignoring")
			return m, nil
		}
		m.buying = true
		m.lastBuyErr = ""
		m.logger.Info("buying", "eth", amount.String(), "token", m.cfg.Token.Symbol)
		m.updateLogViewport()
		return m, buyTokens(m.wallets, m.flow, amount)

	case huh.StateAborted:
		m.buyForm = nil
		return m, nil
	}
	return m, cmd
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case notify.ShowMsg:
		// re-arm the queue for the next notification
		return m, tea.Batch(m.toasts.Update(msg), m.queue.Wait())

	case notify.ExpiredMsg, notify.DismissMsg:
		return m, m.toasts.Update(msg)

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		m.logReady = true
		m.logger.Info("Logger enabled")
		m.updateLogViewport()
		return m, nil

	case rpcConnectedMsg:
		m.rpcConnecting = false
		if msg.err != nil {
			m.rpcConnected = false
			m.logger.Error("RPC connection failed", "err", msg.err)
		} else {
			m.rpcConnected = true
			m.chainID = msg.chainID
			m.logger.Info("RPC connected", "url", m.ethClient.URL, "chain", msg.chainID)
		}
		m.updateLogViewport()
		return m, nil

	case walletConnectedMsg:
		m.connecting = false
		m.updateLogViewport()
		if msg.outcome == wallet.OutcomeConnected {
			return m, m.refreshBalances()
		}
		return m, nil

	case walletDisconnectedMsg:
		m.balances = nil
		m.balancesLoading = false
		m.updateLogViewport()
		return m, nil

	case buyFinishedMsg:
		m.buying = false
		if msg.result != nil {
			m.lastBuy = msg.result
		}
		switch {
		case errors.Is(msg.err, purchase.ErrProviderUnavailable):
			m.lastBuyErr = "wallet not installed, opened the install page"
		case msg.err != nil:
			m.lastBuyErr = msg.err.Error()
		default:
			m.lastBuyErr = ""
		}
		m.updateLogViewport()
		if msg.err == nil {
			return m, m.refreshBalances()
		}
		return m, nil

	case tokenAddedMsg:
		m.addingToken = false
		m.updateLogViewport()
		return m, nil

	case balancesLoadedMsg:
		m.balancesLoading = false
		b := msg.b
		m.balances = &b
		if b.ErrMessage != "" {
			m.logger.Warn("balances", "address", helpers.ShortenAddr(b.Address), "err", b.ErrMessage)
		} else {
			m.logger.Debug("balances loaded", "address", helpers.ShortenAddr(b.Address), "eth", helpers.FormatETH(b.EthWei))
		}
		m.updateLogViewport()
		return m, nil

	case clipboardCopiedMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard copy failed", "err", msg.err)
		}
		m.updateLogViewport()
		return m, nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		// Width accounts for border and padding
		m.logViewport.Width = max(0, msg.Width-6)
		if m.logReady {
			m.updateLogViewport()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// form internals (field focus, submit) travel as their own messages
	if m.buyForm != nil {
		return m.updateBuyForm(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.textInputActive() {
		// Intercept ESC key to cancel form
		if msg.String() == "esc" {
			m.buyForm = nil
			return m, nil
		}
		return m.updateBuyForm(msg)
	}

	// global keys
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		if n, ok := m.toasts.Newest(); ok {
			m.toasts.Dismiss(n.ID)
		}
		return m, nil

	case "l", "L":
		// Toggle logger
		m.logEnabled = !m.logEnabled
		m.saveConfig()
		if m.logEnabled {
			if m.w > 0 {
				m.logViewport.Width = m.w - 6
			}
			m.logReady = false
			return m, tea.Batch(initLogViewport(), m.logSpinner.Tick)
		}
		// Clear logs when disabling
		m.logBuffer.Reset()
		m.logReady = false
		return m, nil

	case "pgup", "pgdown":
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case "w":
		m.activePage = config.PageWallets
		return m, nil

	case "b":
		m.activePage = config.PageBuy
		return m, nil

	case "t":
		m.activePage = config.PageToken
		if m.balances == nil && !m.balancesLoading {
			return m, m.refreshBalances()
		}
		return m, nil
	}

	// page-specific behavior
	switch m.activePage {
	case config.PageWallets:
		return m.handleWalletsKey(msg)
	case config.PageBuy:
		return m.handleBuyKey(msg)
	case config.PageToken:
		return m.handleTokenKey(msg)
	}
	return m, nil
}

func (m *model) handleWalletsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	enabled := m.wallets.Session().ButtonsEnabled()

	switch msg.String() {
	case "up", "k":
		if enabled && m.selectedWallet > 0 {
			m.selectedWallet--
		}
	case "down", "j":
		if enabled && m.selectedWallet < len(m.descs)-1 {
			m.selectedWallet++
		}
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		if enabled && idx < len(m.descs) {
			m.selectedWallet = idx
		}
	case "enter":
		if !enabled {
			m.logger.Debug("connect ignored, wallet already connected")
			return m, nil
		}
		if m.connecting {
			m.logger.Debug("connect already in flight, ignoring")
			return m, nil
		}
		if m.selectedWallet >= len(m.descs) {
			return m, nil
		}
		m.connecting = true
		return m, connectWallet(m.wallets, m.descs[m.selectedWallet].ID)
	case "x":
		if m.wallets.Session().Connected() {
			return m, disconnectWallet(m.wallets)
		}
	}
	return m, nil
}

func (m *model) handleBuyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		return m, nil
	}
	if m.cfgErr != nil || m.buying {
		return m, nil
	}
	m.createBuyForm()
	return m, nil
}

func (m *model) handleTokenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		if m.cfg.Token.Address == "" {
			return m, nil
		}
		return m, copyTokenAddress(m.cfg.Token.Address, m.queue)
	case "a":
		if m.addingToken || !helpers.IsValidEthAddress(m.cfg.Token.Address) {
			return m, nil
		}
		m.addingToken = true
		return m, addToken(m.wallets, wallet.Asset{
			Address:  m.cfg.TokenAddress(),
			Symbol:   m.cfg.Token.Symbol,
			Decimals: m.cfg.Token.Decimals,
			Image:    m.cfg.Token.Image,
		})
	case "r":
		return m, m.refreshBalances()
	}
	return m, nil
}
