package main

import (
	"math/big"

	"memepi-dapp/purchase"
	"memepi-dapp/rpc"
	"memepi-dapp/wallet"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// rpcConnectedMsg contains result of the startup RPC check
type rpcConnectedMsg struct {
	chainID *big.Int
	err     error
}

// walletConnectedMsg reports a finished connect attempt
type walletConnectedMsg struct {
	id      wallet.ID
	outcome wallet.Outcome
	err     error
}

// walletDisconnectedMsg reports that the session was cleared
type walletDisconnectedMsg struct{}

// buyFinishedMsg reports a settled purchase
type buyFinishedMsg struct {
	result *purchase.Result
	err    error
}

// tokenAddedMsg reports a finished wallet_watchAsset request
type tokenAddedMsg struct {
	err error
}

// balancesLoadedMsg contains the connected account's balances
type balancesLoadedMsg struct {
	b rpc.Balances
}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	err error
}
