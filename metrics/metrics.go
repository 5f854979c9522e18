package metrics

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WalletConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "wallet_connects_total", Help: "Wallet connect attempts by brand and outcome"},
		[]string{"wallet", "outcome"},
	)
	TokenPurchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "token_purchases_total", Help: "Token purchase attempts by outcome"},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(WalletConnects, TokenPurchases)
}

// Serve binds addr and exposes /metrics in the background. A bind failure
// is returned; errors after that are logged.
func Serve(addr string, logger *log.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", srv.Addr, "err", err)
		}
	}()
	return srv, nil
}
