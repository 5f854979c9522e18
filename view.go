package main

import (
	"strings"

	"memepi-dapp/config"
	"memepi-dapp/helpers"
	"memepi-dapp/views/buy"
	logview "memepi-dapp/views/log"
	"memepi-dapp/views/token"
	"memepi-dapp/views/wallets"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

// sessionStatus is the session part of the header
func (m *model) sessionStatus() string {
	addr, ok := m.wallets.Session().Address()
	if !ok {
		return lipgloss.NewStyle().Foreground(cMuted).Render("○ not connected")
	}
	icon := "👛"
	if d, err := m.wallets.ActiveDescriptor(); err == nil {
		icon = d.Icon
	}
	return lipgloss.NewStyle().Foreground(cAccent2).Bold(true).
		Render(icon + " " + helpers.FadeString(helpers.ShortenAddr(addr), "#F25D94", "#EDFF82"))
}

// rpcStatus is the node part of the header
func (m *model) rpcStatus() string {
	statusIcon := "○"
	statusColor := cError
	var statusText string

	switch {
	case m.ethClient == nil:
		statusText = "No RPC"
	case m.rpcConnecting:
		statusText = "Connecting..."
	case !m.rpcConnected:
		statusText = "Connection Failed"
	default:
		statusIcon = "●"
		statusColor = cAccent
		statusText = "Connected"
		if m.chainID != nil {
			statusText = "Chain " + m.chainID.String()
		}
	}

	return lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)
}

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	addrDisplay := m.sessionStatus()
	rpcDisplay := m.rpcStatus()
	titleText := lipgloss.NewStyle().
		Foreground(cAccent).
		Bold(true).
		Render(helpers.FadeString("memepi "+strings.ToLower(m.cfg.Token.Symbol), "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	rpcWidth := lipgloss.Width(rpcDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + rpcWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + rpcDisplay
	} else {
		// Three-column layout: Session | Title (centered) | RPC
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay + strings.Repeat(" ", max(1, leftPadding)) + titleText + strings.Repeat(" ", max(1, rightPadding)) + rpcDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

func (m *model) buyStatus() buy.Status {
	s := buy.Status{
		Symbol:   m.cfg.Token.Symbol,
		Decimals: m.cfg.Token.Decimals,
		Router:   m.cfg.Dex.Router,
		Slippage: m.cfg.Dex.BuySlippage.String(),
		Busy:     m.buying,
		State:    m.flow.State(),
		Result:   m.lastBuy,
		ErrMsg:   m.lastBuyErr,
	}
	if m.cfgErr != nil {
		s.ConfigErr = m.cfgErr.Error()
	}
	if m.buyForm != nil {
		s.FormView = m.buyForm.View()
	}
	return s
}

func (m *model) View() string {
	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())

	var pageContent, nav string
	switch m.activePage {
	case config.PageWallets:
		addr, connected := m.wallets.Session().Address()
		content := wallets.Render(m.descs, m.selectedWallet, m.wallets.Session().ButtonsEnabled(), m.connecting, m.spin.View(), addr)
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(content)
		nav = wallets.Nav(m.w-2, connected)

	case config.PageBuy:
		content := buy.Render(m.w-2, m.buyStatus(), m.spin.View())
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(content)
		nav = buy.Nav(m.w-2, m.buyForm != nil)

	case config.PageToken:
		content := token.Render(m.cfg.Token, m.qr, m.balances, m.balancesLoading, m.spin.View())
		if m.addingToken {
			content += "\n\n" + m.spin.View() + " waiting for wallet…"
		}
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(content)
		nav = token.Nav(m.w - 2)
	}

	sections := []string{headerPanel}
	if toasts := m.toasts.View(m.w - 2); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, pageContent, nav)

	// Render log panel only if enabled
	if m.logEnabled {
		m.logViewport.Height = logview.Height(m.h)
		sections = append(sections, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
