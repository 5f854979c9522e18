package buy

import (
	"strings"

	"memepi-dapp/helpers"
	"memepi-dapp/purchase"
	"memepi-dapp/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Nav returns the navigation bar for the buy view
func Nav(width int, editing bool) string {
	var keys []string
	if editing {
		keys = []string{
			styles.Key("Enter") + " buy",
			styles.Key("Esc") + " cancel",
		}
	} else {
		keys = []string{
			styles.Key("Enter") + " new purchase",
			styles.Key("w") + " wallets",
			styles.Key("t") + " token",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}
	}
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Status is everything the view needs about the current or last purchase
type Status struct {
	Symbol    string
	Decimals  uint8
	Router    string
	Slippage  string
	ConfigErr string
	FormView  string
	Busy      bool
	State     purchase.State
	Result    *purchase.Result
	ErrMsg    string
}

// Render renders the buy view
func Render(width int, s Status, spinnerView string) string {
	containerWidth := helpers.Min(80, helpers.Max(20, width-4))

	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Align(lipgloss.Center).
		Width(containerWidth).
		Render("🦄 Buy " + s.Symbol)

	info := styles.MutedStyle.Render("Uniswap V2 router " + helpers.ShortenAddr(s.Router) + "   slippage " + s.Slippage + "%")
	lines := []string{title, "", info, ""}

	if s.ConfigErr != "" {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+s.ConfigErr),
			styles.MutedStyle.Render("Fix the config file or .env and restart."),
		)
		return strings.Join(lines, "\n")
	}

	box := lipgloss.NewStyle().
		Width(containerWidth - 4).
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder)

	switch {
	case s.Busy:
		lines = append(lines, box.BorderForeground(styles.CAccent).Render(spinnerView+" "+s.State.String()))
	case s.FormView != "":
		lines = append(lines, box.Render(s.FormView))
	default:
		lines = append(lines, styles.MutedStyle.Render("Press ")+styles.Key("Enter")+styles.MutedStyle.Render(" to buy with ETH."))
	}

	if s.Result != nil && s.Result.TxHash != (common.Hash{}) {
		lines = append(lines, "", styles.MutedStyle.Render("Last transaction"))
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CText).Render(s.Result.TxHash.Hex()))
		if s.Result.Quote.ExpectedTokenOut != nil {
			accent := lipgloss.NewStyle().Foreground(styles.CAccent)
			lines = append(lines, styles.MutedStyle.Render("Quoted ")+
				accent.Render(helpers.FormatToken(s.Result.Quote.ExpectedTokenOut, s.Decimals, s.Symbol))+
				styles.MutedStyle.Render(", at least ")+
				accent.Render(helpers.FormatToken(s.Result.Quote.MinimumTokenOut, s.Decimals, s.Symbol)))
		}
	}
	if s.ErrMsg != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CError).Render("✗ "+s.ErrMsg))
	}

	return strings.Join(lines, "\n")
}
