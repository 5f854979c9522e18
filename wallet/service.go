package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"

	"memepi-dapp/metrics"
	"memepi-dapp/notify"

	"github.com/charmbracelet/log"
)

// ErrAlreadyConnected is returned when connecting while a session is active.
var ErrAlreadyConnected = errors.New("a wallet is already connected, disconnect first")

// Outcome tells the caller what Connect did.
type Outcome int

const (
	// OutcomeFailed means the session is unchanged and an error was notified
	OutcomeFailed Outcome = iota
	// OutcomeRedirected means the wallet is missing and its install page was opened
	OutcomeRedirected
	// OutcomeConnected means the session now holds an account
	OutcomeConnected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirected:
		return "redirected"
	case OutcomeConnected:
		return "connected"
	default:
		return "failed"
	}
}

// Service owns the session and runs connect/disconnect.
type Service struct {
	registry *Registry
	session  *Session
	opener   Opener
	notifier notify.Notifier
	logger   *log.Logger
}

// NewService wires a service. logger may be nil.
func NewService(registry *Registry, session *Session, opener Opener, notifier notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		registry: registry,
		session:  session,
		opener:   opener,
		notifier: notifier,
		logger:   logger.WithPrefix("wallet"),
	}
}

func (s *Service) Registry() *Registry { return s.registry }

func (s *Service) Session() *Session { return s.session }

// Connect connects the wallet identified by id.
//
// A missing wallet is not an error: its install page is opened and
// OutcomeRedirected is returned with a nil error.
func (s *Service) Connect(ctx context.Context, id ID) (Outcome, error) {
	outcome, err := s.connect(ctx, id)
	metrics.WalletConnects.WithLabelValues(id.metricLabel(), outcome.String()).Inc()
	return outcome, err
}

func (s *Service) connect(ctx context.Context, id ID) (Outcome, error) {
	desc, err := s.registry.Lookup(id)
	if err != nil {
		s.logger.Error("connect rejected", "wallet", id, "err", err)
		s.notifier.Notify("Connection Failed", err.Error(), notify.Error)
		return OutcomeFailed, err
	}

	if s.session.Connected() {
		s.notifier.Notify("Connection Failed", ErrAlreadyConnected.Error(), notify.Error)
		return OutcomeFailed, ErrAlreadyConnected
	}

	if !desc.Available() {
		s.logger.Info("wallet not available, opening install page", "wallet", desc.Name, "url", desc.InstallURL)
		s.OpenInstallPage(desc)
		return OutcomeRedirected, nil
	}

	s.logger.Debug("requesting accounts", "wallet", desc.Name)
	address, err := desc.Connect(ctx)
	if err != nil {
		s.logger.Error("connect failed", "wallet", desc.Name, "err", err)
		s.notifier.Notify("Connection Failed", err.Error(), notify.Error)
		return OutcomeFailed, err
	}

	s.session.set(desc.ID, address)
	s.logger.Info("wallet connected", "wallet", desc.Name, "address", address)
	s.notifier.Notify("Wallet Connected!", fmt.Sprintf("Connected to %s", desc.Name), notify.Success)
	return OutcomeConnected, nil
}

// Disconnect clears the session. It is safe to call when nothing is connected.
func (s *Service) Disconnect() {
	s.session.clear()
	s.logger.Info("wallet disconnected")
	s.notifier.Notify("Wallet Disconnected", "Your wallet has been disconnected", notify.Info)
}

// ActiveDescriptor is the connected brand, or MetaMask when disconnected.
func (s *Service) ActiveDescriptor() (Descriptor, error) {
	id, ok := s.session.Wallet()
	if !ok {
		id = MetaMask
	}
	return s.registry.Lookup(id)
}

// OpenInstallPage sends the user to desc's download page. Failures are only logged.
func (s *Service) OpenInstallPage(desc Descriptor) {
	if s.opener == nil || desc.InstallURL == "" {
		return
	}
	if err := s.opener.Open(desc.InstallURL); err != nil {
		s.logger.Warn("could not open install page", "url", desc.InstallURL, "err", err)
	}
}

// AddToken asks the active wallet to track asset (wallet_watchAsset).
func (s *Service) AddToken(ctx context.Context, asset Asset) error {
	desc, err := s.ActiveDescriptor()
	if err != nil {
		s.notifier.Notify("Error", "Failed to add token: "+err.Error(), notify.Error)
		return err
	}
	if !desc.Available() {
		s.OpenInstallPage(desc)
		return nil
	}

	if _, err := desc.Provider.RequestAccounts(ctx); err != nil {
		s.logger.Error("add token: account request failed", "wallet", desc.Name, "err", err)
		s.notifier.Notify("Error", "Failed to add token: "+err.Error(), notify.Error)
		return err
	}

	added, err := desc.Provider.WatchAsset(ctx, asset)
	if err != nil {
		s.logger.Error("add token failed", "wallet", desc.Name, "token", asset.Symbol, "err", err)
		s.notifier.Notify("Error", "Failed to add token: "+err.Error(), notify.Error)
		return err
	}
	if added {
		s.logger.Info("token added to wallet", "wallet", desc.Name, "token", asset.Symbol)
		s.notifier.Notify("Success!", fmt.Sprintf("%s Token was added to your %s wallet", asset.Symbol, desc.Name), notify.Success)
	}
	return nil
}
