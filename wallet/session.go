package wallet

import "sync"

// Session tracks the connected account. Only Service mutates it; views read it
// to decide whether the connect buttons are enabled.
type Session struct {
	mu      sync.RWMutex
	address string
	wallet  ID
}

// NewSession returns a disconnected session.
func NewSession() *Session {
	return &Session{}
}

// Address returns the connected account, if any.
func (s *Session) Address() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.address != ""
}

// Wallet returns the brand of the connected account, if any.
func (s *Session) Wallet() (ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet, s.address != ""
}

// Connected reports whether an account is connected.
func (s *Session) Connected() bool {
	_, ok := s.Address()
	return ok
}

// ButtonsEnabled is the enabled state of every connect button.
func (s *Session) ButtonsEnabled() bool {
	return !s.Connected()
}

func (s *Session) set(id ID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.wallet = id
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = ""
	s.wallet = 0
}
