package wallets

import (
	"fmt"
	"strings"

	"memepi-dapp/helpers"
	"memepi-dapp/styles"
	"memepi-dapp/wallet"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for wallets view
func Nav(width int, connected bool) string {
	keys := []string{
		styles.Key("↑/↓") + " move",
		styles.Key("1-3") + " pick",
		styles.Key("Enter") + " connect",
	}
	if connected {
		keys = append(keys, styles.Key("x")+" disconnect")
	}
	keys = append(keys,
		styles.Key("b")+" buy",
		styles.Key("t")+" token",
		styles.Key("l")+" debug log",
		styles.Key("q")+" quit",
	)

	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Button renders one connect button. Disabled buttons ignore selection.
func Button(d wallet.Descriptor, selected, enabled bool) string {
	label := fmt.Sprintf("%s  Connect %s", d.Icon, d.Name)
	switch {
	case !enabled:
		return styles.DisabledButtonStyle.Render(label)
	case selected:
		return styles.ActiveButtonStyle.Render(label)
	default:
		return styles.ButtonStyle.Render(label)
	}
}

// Render renders the connect page
func Render(descs []wallet.Descriptor, selectedIdx int, enabled, connecting bool, spinnerView, address string) string {
	header := styles.TitleStyle.Render("Connect Wallet")
	subtitle := styles.MutedStyle.Render("Connect a browser wallet to buy and track the token")

	var rows []string
	for i, d := range descs {
		marker := "  "
		if enabled && i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
		}
		status := ""
		if !d.Available() {
			status = "  " + styles.MutedStyle.Render("not installed, opens "+d.InstallURL)
		}
		rows = append(rows, marker+Button(d, i == selectedIdx, enabled)+status)
	}

	var statusBar string
	switch {
	case connecting:
		statusBar = spinnerView + " waiting for wallet…"
	case address != "":
		statusBar = lipgloss.NewStyle().Foreground(styles.CAccent).Render("✓ connected ") +
			helpers.FadeString(helpers.ShortenAddr(address), "#F25D94", "#EDFF82") +
			styles.MutedStyle.Render("   press ") + styles.Key("x") + styles.MutedStyle.Render(" to disconnect")
	default:
		statusBar = styles.MutedStyle.Render(fmt.Sprintf("%d wallets supported", len(descs)))
	}

	return header + "\n" + subtitle + "\n\n" + strings.Join(rows, "\n\n") + "\n\n" + statusBar
}
