// Package notify maps classified errors onto the non-blocking,
// user-facing messages a front end should show. Rendering is the
// embedder's concern; the wording lives here.
package notify

import (
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/types"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one user-visible notification.
type Notice struct {
	Level   Level
	Message string
}

// Notifier renders notices. Implementations must never block.
type Notifier interface {
	Notify(Notice)
}

// ForError translates a classified error into the notice a user sees.
// A user rejection is informational, not an error state.
func ForError(err error) Notice {
	switch types.CodeOf(err) {
	case types.ErrUserRejected:
		return Notice{LevelInfo, "Transaction was cancelled"}
	case types.ErrInsufficientFunds:
		return Notice{LevelError, "Insufficient funds to complete this transaction"}
	case types.ErrNonceOrState:
		return Notice{LevelError, "Please try again. Transaction could not be processed"}
	case types.ErrNoProvider:
		return Notice{LevelError, "Please install a wallet to continue"}
	case types.ErrNotConnected:
		return Notice{LevelWarning, "Connect your wallet first"}
	case types.ErrUnknownChain:
		return Notice{LevelWarning, "Switch to the supported network to continue"}
	default:
		return Notice{LevelError, "Something went wrong. Please try again."}
	}
}

// LogNotifier writes notices through the library logger.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(notice Notice) {
	fields := map[string]any{"level": string(notice.Level)}
	switch notice.Level {
	case LevelError:
		n.Log.Error(notice.Message, fields)
	case LevelWarning:
		n.Log.Warn(notice.Message, fields)
	default:
		n.Log.Info(notice.Message, fields)
	}
}
