package token

import (
	"strings"
	"testing"

	"memepi-dapp/config"
)

func TestQR(t *testing.T) {
	qr := QR("ethereum:0x3140000000000000000000000000000000000001")
	if len(strings.Split(qr, "\n")) < 10 {
		t.Fatalf("QR too small:\n%s", qr)
	}
}

func TestRenderWithoutAddress(t *testing.T) {
	out := Render(config.Token{Symbol: "MEPI", Decimals: 18}, "", nil, false, "")
	if !strings.Contains(out, "MEPI_TOKEN_ADDRESS") {
		t.Errorf("expected configuration hint, got:\n%s", out)
	}
}
