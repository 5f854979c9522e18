package metrics

import (
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(TokenPurchases.WithLabelValues("success"))
	TokenPurchases.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(TokenPurchases.WithLabelValues("success")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}

	WalletConnects.WithLabelValues("metamask", "connected").Inc()
	if testutil.ToFloat64(WalletConnects.WithLabelValues("metamask", "connected")) < 1 {
		t.Fatal("wallet connect counter not incremented")
	}
}

func TestServeExposesMetrics(t *testing.T) {
	srv, err := Serve("127.0.0.1:0", log.New(io.Discard))
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	defer srv.Close()

	TokenPurchases.WithLabelValues("failed").Inc()
	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "token_purchases_total") {
		t.Fatal("token_purchases_total missing from /metrics")
	}
}

func TestServePortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if _, err := Serve(ln.Addr().String(), log.New(io.Discard)); err == nil {
		t.Fatal("expected an error for an address already in use")
	}
}
