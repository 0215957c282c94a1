package clients

import (
	"errors"
	"strings"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/tokenbay/tokenbay/types"
)

// EIP-1193 / EIP-3085 provider error codes.
const (
	codeUserRejectedRequest = 4001
	codeUnrecognizedChain   = 4902
)

// Classify maps a raw provider or network failure onto the stable
// error taxonomy. Already-classified errors pass through unchanged.
// Classification happens once, at the boundary where the failure first
// surfaces; callers never see raw provider error shapes.
func Classify(err error) *types.Error {
	if err == nil {
		return nil
	}

	var classified *types.Error
	if errors.As(err, &classified) {
		return classified
	}

	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejectedRequest:
			return &types.Error{
				Code:    types.ErrUserRejected,
				Message: "request was rejected in the wallet",
			}
		case codeUnrecognizedChain:
			return &types.Error{
				Code:    types.ErrUnknownChain,
				Message: "the wallet does not recognize the requested chain",
			}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "action_rejected"),
		strings.Contains(msg, "user rejected"),
		strings.Contains(msg, "user denied"):
		return &types.Error{
			Code:    types.ErrUserRejected,
			Message: "transaction was cancelled",
		}
	case strings.Contains(msg, "insufficient funds"):
		return &types.Error{
			Code:    types.ErrInsufficientFunds,
			Message: "insufficient funds to complete this transaction",
		}
	case strings.Contains(msg, "nonce"),
		strings.Contains(msg, "replacement transaction underpriced"),
		strings.Contains(msg, "already known"):
		return &types.Error{
			Code:    types.ErrNonceOrState,
			Message: "transaction could not be processed, please try again",
		}
	}

	return &types.Error{
		Code:    types.ErrNetworkError,
		Message: err.Error(),
	}
}
