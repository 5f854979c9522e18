package config

// Page identifies the screen currently shown
type Page int

const (
	PageWallets Page = iota
	PageBuy
	PageToken
)

func (p Page) String() string {
	switch p {
	case PageBuy:
		return "Buy"
	case PageToken:
		return "Token"
	default:
		return "Wallets"
	}
}
