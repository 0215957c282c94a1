package types

import "errors"

// Error is the stable, user-facing error shape for the whole library.
// Raw provider and network failures are classified into one of the
// codes below at the boundary where they first surface; callers never
// see raw JSON-RPC error shapes.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	// ErrNoProvider means no wallet provider endpoint is reachable;
	// surfaced to the user as an instruction to configure one.
	ErrNoProvider = "NO_PROVIDER"

	// ErrUserRejected means the user declined a wallet prompt or
	// transaction. Informational, not an error state.
	ErrUserRejected = "USER_REJECTED"

	// ErrInsufficientFunds means the account balance is too low for
	// the attempted write.
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS"

	// ErrNonceOrState means the transaction could not be processed due
	// to sequencing or state conflicts; user-visible as "try again".
	ErrNonceOrState = "NONCE_OR_STATE"

	// ErrUnknownChain means the chain-switch target is not recognized
	// by the wallet; triggers the add-then-switch fallback.
	ErrUnknownChain = "UNKNOWN_CHAIN"

	// ErrPartialAggregation means one or more catalog items failed to
	// resolve. Not fatal; failed items are logged and excluded.
	ErrPartialAggregation = "PARTIAL_AGGREGATION"

	// ErrNotConnected means a write was attempted without an active
	// session; blocked before it reaches the network.
	ErrNotConnected = "NOT_CONNECTED"

	ErrNetworkError = "NETWORK_ERROR"
	ErrConfigError  = "CONFIG_ERROR"
)

// CodeOf extracts the classification code from err, or ErrNetworkError
// when err carries no code.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrNetworkError
}

// HasCode reports whether err is classified with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
