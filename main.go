package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"memepi-dapp/config"
	"memepi-dapp/metrics"
	"memepi-dapp/notify"
	"memepi-dapp/purchase"
	"memepi-dapp/rpc"
	"memepi-dapp/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- MAIN --------------------

func main() {
	a := setup()
	defer a.close()

	m := newModel(a)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// app is everything built before the UI starts
type app struct {
	cfg        config.Config
	configPath string
	cfgErr     error

	logger    *log.Logger
	logBuffer *logBuffer

	client  *rpc.Client
	queue   *notify.Queue
	wallets *wallet.Service
	flow    *purchase.Flow
	closers []func()
}

func (a *app) close() {
	for _, c := range a.closers {
		c()
	}
}

func setup() *app {
	buf := &logBuffer{}
	a := &app{
		configPath: config.DefaultPath(),
		logBuffer:  buf,
		logger:     newLogger(buf),
	}

	cfg, err := config.LoadOrCreate(a.configPath)
	if err != nil {
		a.logger.Warn("config", "path", a.configPath, "err", err)
	}
	config.ApplyEnv(&cfg)
	a.cfg = cfg
	if err := cfg.Validate(); err != nil {
		a.cfgErr = err
		a.logger.Error("invalid config", "err", err)
	}

	a.queue = notify.NewQueue(a.logger)

	conn := rpc.Connect(cfg.RPCURL)
	if conn.Error != nil {
		a.logger.Error("RPC connection failed", "url", cfg.RPCURL, "err", conn.Error)
	} else {
		a.client = conn.Client
		a.closers = append(a.closers, conn.Client.Close)
	}

	providers := a.providers(cfg.Wallets)
	opener := wallet.BrowserOpener{}
	a.wallets = wallet.NewService(wallet.Defaults(providers), wallet.NewSession(), opener, a.queue, a.logger)

	var chain purchase.Chain
	if a.client != nil {
		chain = a.client.Client
	}
	a.flow = purchase.New(chain, opener, a.queue, a.logger, flowOptions(cfg))

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, a.logger)
		if err != nil {
			a.logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "err", err)
		} else {
			a.logger.Info("metrics listening", "addr", srv.Addr)
			a.closers = append(a.closers, func() { _ = srv.Close() })
		}
	}

	return a
}

// flowOptions maps the dex and token config onto purchase options. A zero
// slippage is a valid setting and is passed through.
func flowOptions(cfg config.Config) purchase.Options {
	opts := purchase.DefaultOptions(cfg.TokenAddress(), cfg.Token.Symbol)
	opts.Router = common.HexToAddress(cfg.Dex.Router)
	opts.WrappedNative = common.HexToAddress(cfg.Dex.WETH)
	opts.GasLimit = cfg.Dex.GasLimit
	opts.SlippagePercent = cfg.Dex.BuySlippage
	return opts
}

// providers builds one wallet provider per config entry. Entries that cannot
// be set up are logged and left out, so that brand shows as not installed.
func (a *app) providers(entries []config.WalletEntry) map[wallet.ID]wallet.Provider {
	out := make(map[wallet.ID]wallet.Provider, len(entries))
	for _, e := range entries {
		id, err := wallet.ParseID(e.ID)
		if err != nil {
			a.logger.Warn("skipping wallet entry", "id", e.ID, "err", err)
			continue
		}

		switch {
		case e.Endpoint != "":
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p, err := rpc.DialInjected(ctx, e.Endpoint)
			cancel()
			if err != nil {
				a.logger.Warn("wallet endpoint unavailable", "wallet", id, "err", err)
				continue
			}
			a.closers = append(a.closers, p.Close)
			out[id] = p

		case e.KeyEnv != "":
			if a.client == nil {
				a.logger.Warn("key wallet needs an RPC connection", "wallet", id)
				continue
			}
			p, err := rpc.KeyProviderFromEnv(e.KeyEnv, a.client.Client)
			if err != nil {
				a.logger.Debug("key wallet disabled", "wallet", id, "err", err)
				continue
			}
			a.logger.Info("key wallet ready", "wallet", id, "address", p.Address().Hex())
			out[id] = p
		}
	}
	return out
}
