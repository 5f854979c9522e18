package main

import (
	"io"
	"math/big"
	"strings"
	"sync"

	"memepi-dapp/config"
	"memepi-dapp/notify"
	"memepi-dapp/purchase"
	"memepi-dapp/rpc"
	"memepi-dapp/styles"
	"memepi-dapp/views/token"
	"memepi-dapp/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	activePage config.Page
	cfg        config.Config
	configPath string
	cfgErr     error

	// core services; they run inside tea.Cmds
	wallets *wallet.Service
	flow    *purchase.Flow
	queue   *notify.Queue
	toasts  notify.Stack

	// wallets page
	descs          []wallet.Descriptor
	selectedWallet int
	connecting     bool

	// buy page
	buyForm    *huh.Form
	buying     bool
	lastBuy    *purchase.Result
	lastBuyErr string

	// token page
	addingToken     bool
	qr              string
	balances        *rpc.Balances
	balancesLoading bool

	// rpc state
	spin          spinner.Model
	ethClient     *rpc.Client
	rpcConnected  bool
	rpcConnecting bool
	chainID       *big.Int

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *logBuffer
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// logBuffer collects log output. Cmd goroutines write while the UI reads.
type logBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func (l *logBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Reset()
}

// newLogger creates the app logger writing to w
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.DebugLevel,
	})
	logger.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(cMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
		Message:   lipgloss.NewStyle().Foreground(cText),
		Key:       lipgloss.NewStyle().Foreground(cAccent),
		Value:     lipgloss.NewStyle().Foreground(cText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(styles.CError).SetString("ERROR"),
		},
	})
	return logger
}

// -------------------- INIT --------------------

// newModel creates the model from the services built in setup
func newModel(a *app) model {
	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	m := model{
		activePage:    config.PageWallets,
		cfg:           a.cfg,
		configPath:    a.configPath,
		cfgErr:        a.cfgErr,
		wallets:       a.wallets,
		flow:          a.flow,
		queue:         a.queue,
		toasts:        notify.NewStack(),
		descs:         a.wallets.Registry().All(),
		spin:          sp,
		ethClient:     a.client,
		rpcConnecting: a.client != nil,
		logEnabled:    a.cfg.Logger,
		logger:        a.logger,
		logBuffer:     a.logBuffer,
		logViewport:   vp,
		logSpinner:    logSpin,
	}
	if a.cfg.Token.Address != "" {
		m.qr = token.QR(rpc.EIP681(a.cfg.TokenAddress(), nil))
	}

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.queue.Wait()}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	if m.ethClient != nil {
		cmds = append(cmds, pingRPC(m.ethClient))
	}
	return tea.Batch(cmds...)
}
