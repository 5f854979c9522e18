package token

import (
	"bytes"
	"fmt"
	"strings"

	"memepi-dapp/config"
	"memepi-dapp/helpers"
	"memepi-dapp/rpc"
	"memepi-dapp/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// Nav returns the navigation bar for token view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("c") + " copy address",
		styles.Key("a") + " add to wallet",
		styles.Key("r") + " refresh",
		styles.Key("w") + " wallets",
		styles.Key("b") + " buy",
		styles.Key("l") + " logger",
		styles.Key("q") + " quit",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// QR renders data as a half-block QR code
func QR(data string) string {
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(data, qrterminal.L, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

// Render renders the token details view. balances is nil while no wallet is connected.
func Render(tok config.Token, qr string, balances *rpc.Balances, loading bool, spinnerView string) string {
	h := styles.TitleStyle.Render(tok.Symbol + " Token")

	label := lipgloss.NewStyle().Foreground(styles.CMuted).Width(10)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	addr := styles.MutedStyle.Render("not configured (set MEPI_TOKEN_ADDRESS)")
	if tok.Address != "" {
		// Use OSC 8 hyperlink format: \x1b]8;;URL\x1b\\TEXT\x1b]8;;\x1b\\
		url := fmt.Sprintf("https://etherscan.io/token/%s", tok.Address)
		addr = fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, lipgloss.NewStyle().Foreground(styles.CAccent2).Underline(true).Render(tok.Address))
	}

	lines := []string{
		h,
		"",
		label.Render("Symbol") + value.Render(tok.Symbol),
		label.Render("Decimals") + value.Render(fmt.Sprint(tok.Decimals)),
		label.Render("Address") + addr,
		"",
	}

	switch {
	case loading:
		lines = append(lines, spinnerView+" fetching balances…")
	case balances == nil:
		lines = append(lines, styles.MutedStyle.Render("Connect a wallet to see balances."))
	case balances.ErrMessage != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+balances.ErrMessage))
	default:
		lines = append(lines,
			lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("ETH")+"   "+value.Render(helpers.FormatETH(balances.EthWei)),
			lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true).Render(tok.Symbol)+"  "+value.Render(helpers.FormatToken(balances.TokenBase, tok.Decimals, tok.Symbol)),
		)
	}

	info := strings.Join(lines, "\n")
	if qr == "" {
		return info
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, info, lipgloss.NewStyle().MarginLeft(4).Render(qr))
}
