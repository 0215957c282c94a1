package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
)

// SessionStatus represents the wallet connection lifecycle.
type SessionStatus string

const (
	StatusDisconnected SessionStatus = "disconnected"
	StatusConnecting   SessionStatus = "connecting"
	StatusConnected    SessionStatus = "connected"
)

// Session is the client's current belief about wallet connectivity.
// Invariant: Account is non-nil exactly when Status is StatusConnected.
type Session struct {
	Status     SessionStatus
	Account    *common.Address
	BalanceWei *big.Int
	ChainID    *big.Int
}

// Connected reports whether the session has an active account.
func (s Session) Connected() bool {
	return s.Status == StatusConnected && s.Account != nil
}

// Clone returns a deep copy so readers can hold a snapshot across
// suspension points without observing later mutations.
func (s Session) Clone() Session {
	out := Session{Status: s.Status}
	if s.Account != nil {
		acc := *s.Account
		out.Account = &acc
	}
	if s.BalanceWei != nil {
		out.BalanceWei = new(big.Int).Set(s.BalanceWei)
	}
	if s.ChainID != nil {
		out.ChainID = new(big.Int).Set(s.ChainID)
	}
	return out
}

// Listing is the raw on-chain record for one tokenized asset offered
// for sale. Immutable once fetched; superseded by a re-fetch.
type Listing struct {
	TokenID  *big.Int
	Seller   common.Address
	Owner    common.Address
	PriceWei *big.Int
	Sold     bool
}

// Metadata is the off-chain document referenced by a listing's token URI.
// A document missing a required field is treated as a fetch failure.
type Metadata struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageURI    string `json:"image" validate:"required,uri"`
}

// CatalogItem joins a Listing with its resolved Metadata, keyed by
// TokenID within a single catalog snapshot.
type CatalogItem struct {
	Listing
	Metadata
}

// TxState represents the lifecycle of one submitted write transaction.
type TxState string

const (
	TxSubmitted TxState = "submitted"
	TxConfirmed TxState = "confirmed"
	TxFailed    TxState = "failed"
)

// TransactionRecord is the ephemeral record of one write transaction.
// It is created on submission, terminates in TxConfirmed or TxFailed,
// and is discarded once the caller has been notified.
type TransactionRecord struct {
	ID      string
	State   TxState
	Hash    *common.Hash
	Receipt *coretypes.Receipt
	Err     *Error
}
