// Package session owns the wallet session state machine. It is the
// single writer of the Session snapshot; every other component reads
// stale-tolerant copies and subscribes to change notifications here
// instead of listening to the raw provider.
package session

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenbay/tokenbay/clients"
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/metrics"
	"github.com/tokenbay/tokenbay/types"
)

// Wallet tracks connection status, active account, balance and chain id,
// reacting to explicit user actions and provider-emitted changes.
type Wallet struct {
	provider clients.Provider
	flags    FlagStore
	log      logger.Logger
	rec      metrics.Recorder

	mu       sync.Mutex
	state    types.Session
	detached bool
	subs     []subscription
	nextSub  int
	bindOnce sync.Once
}

type subscription struct {
	id int
	fn func(types.Session)
}

// NewWallet constructs a disconnected session. flags may be nil, in
// which case the was-connected flag lives only in memory.
func NewWallet(provider clients.Provider, flags FlagStore, log logger.Logger, rec metrics.Recorder) *Wallet {
	if flags == nil {
		flags = &MemFlagStore{}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Wallet{
		provider: provider,
		flags:    flags,
		log:      log,
		rec:      rec,
		state:    types.Session{Status: types.StatusDisconnected},
		detached: true,
	}
}

// Current returns a snapshot. Readers must not assume it is unchanged
// across a suspension point.
func (w *Wallet) Current() types.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// Subscribe registers fn to be called synchronously after every session
// change, in registration order. The returned function unsubscribes.
func (w *Wallet) Subscribe(fn func(types.Session)) func() {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs = append(w.subs, subscription{id: id, fn: fn})
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, sub := range w.subs {
			if sub.id == id {
				w.subs = append(w.subs[:i], w.subs[i+1:]...)
				return
			}
		}
	}
}

// Connect requests account permission from the provider and adopts the
// first authorized account. On success the was-connected flag is
// persisted so a later Resume can re-establish the session silently.
func (w *Wallet) Connect(ctx context.Context) error {
	if w.provider == nil {
		return &types.Error{
			Code:    types.ErrNoProvider,
			Message: "no wallet provider detected; please install one",
		}
	}
	w.bind()

	w.mu.Lock()
	prev := w.state.Clone()
	w.state = types.Session{Status: types.StatusConnecting}
	w.detached = false
	w.mu.Unlock()
	w.notify()

	accounts, err := w.provider.RequestAccounts(ctx)
	if err != nil {
		w.restore(prev)
		return clients.Classify(err)
	}
	if len(accounts) == 0 {
		w.restore(prev)
		return &types.Error{
			Code:    types.ErrUserRejected,
			Message: "wallet returned no accounts",
		}
	}

	if err := w.adopt(ctx, accounts[0]); err != nil {
		w.restore(prev)
		return clients.Classify(err)
	}

	if err := w.flags.SetConnected(true); err != nil {
		w.log.Warn("failed to persist connection flag", map[string]any{"err": err.Error()})
	}
	w.rec.IncCounter(metrics.EventSessionConnected, nil)
	return nil
}

// Resume silently re-establishes the session on startup when the
// persisted flag is set and the provider already has authorized
// accounts. It never prompts the user.
func (w *Wallet) Resume(ctx context.Context) error {
	if w.provider == nil || !w.flags.WasConnected() {
		return nil
	}
	w.bind()

	accounts, err := w.provider.Accounts(ctx)
	if err != nil {
		return clients.Classify(err)
	}
	if len(accounts) == 0 {
		return nil
	}

	w.mu.Lock()
	w.detached = false
	w.mu.Unlock()

	if err := w.adopt(ctx, accounts[0]); err != nil {
		return clients.Classify(err)
	}
	return nil
}

// Disconnect resets the session, clears the persisted flag and detaches
// from provider events. Subscribers are notified once.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	w.state = types.Session{Status: types.StatusDisconnected}
	w.detached = true
	w.mu.Unlock()

	if err := w.flags.SetConnected(false); err != nil {
		w.log.Warn("failed to clear connection flag", map[string]any{"err": err.Error()})
	}
	w.rec.IncCounter(metrics.EventSessionDisconnected, nil)
	w.notify()
}

// RefreshBalance re-queries the active account's balance. No-op while
// disconnected.
func (w *Wallet) RefreshBalance(ctx context.Context) error {
	w.mu.Lock()
	if !w.state.Connected() {
		w.mu.Unlock()
		return nil
	}
	account := *w.state.Account
	w.mu.Unlock()

	balance, err := w.provider.BalanceAt(ctx, account)
	if err != nil {
		return clients.Classify(err)
	}

	w.mu.Lock()
	if w.state.Connected() && *w.state.Account == account {
		w.state.BalanceWei = balance
	}
	w.mu.Unlock()
	w.notify()
	return nil
}

// adopt makes account the active identity, loading its chain id and
// balance. A failed balance query is logged, not fatal.
func (w *Wallet) adopt(ctx context.Context, account common.Address) error {
	chainID, err := w.provider.ChainID(ctx)
	if err != nil {
		return err
	}

	balance, err := w.provider.BalanceAt(ctx, account)
	if err != nil {
		w.log.Warn("balance query failed", map[string]any{
			"account": account.Hex(),
			"err":     err.Error(),
		})
		balance = nil
	}

	w.mu.Lock()
	acc := account
	w.state = types.Session{
		Status:     types.StatusConnected,
		Account:    &acc,
		BalanceWei: balance,
		ChainID:    chainID,
	}
	w.mu.Unlock()
	w.notify()
	return nil
}

// bind registers the provider event handlers exactly once, after the
// session is fully initialized.
func (w *Wallet) bind() {
	w.bindOnce.Do(func() {
		w.provider.OnAccountsChanged(w.handleAccountsChanged)
		w.provider.OnChainChanged(w.handleChainChanged)
	})
}

// handleAccountsChanged adopts the first address even when it matches
// the current one; the balance refresh is deliberately not deduplicated
// across events. An empty list means the wallet revoked access.
func (w *Wallet) handleAccountsChanged(accounts []common.Address) {
	if w.isDetached() {
		return
	}
	if len(accounts) == 0 {
		w.Disconnect()
		return
	}

	account := accounts[0]
	balance, err := w.provider.BalanceAt(context.Background(), account)
	if err != nil {
		w.log.Warn("balance query failed", map[string]any{
			"account": account.Hex(),
			"err":     err.Error(),
		})
		balance = nil
	}
	w.rec.IncCounter(metrics.EventAccountChanged, nil)

	w.mu.Lock()
	acc := account
	w.state.Status = types.StatusConnected
	w.state.Account = &acc
	w.state.BalanceWei = balance
	w.mu.Unlock()
	w.notify()
}

// handleChainChanged updates the chain id and refreshes the balance.
// The active account is never altered by a chain switch.
func (w *Wallet) handleChainChanged(chainID *big.Int) {
	if w.isDetached() {
		return
	}
	w.rec.IncCounter(metrics.EventChainChanged, nil)

	w.mu.Lock()
	if chainID != nil {
		w.state.ChainID = new(big.Int).Set(chainID)
	}
	w.mu.Unlock()
	w.notify()

	if err := w.RefreshBalance(context.Background()); err != nil {
		w.log.Warn("balance refresh after chain change failed", map[string]any{
			"err": err.Error(),
		})
	}
}

func (w *Wallet) isDetached() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detached
}

func (w *Wallet) restore(prev types.Session) {
	w.mu.Lock()
	w.state = prev
	w.mu.Unlock()
	w.notify()
}

// notify invokes subscribers in registration order, after the state
// mutation has fully completed and outside the lock.
func (w *Wallet) notify() {
	w.mu.Lock()
	state := w.state.Clone()
	fns := make([]func(types.Session), len(w.subs))
	for i, sub := range w.subs {
		fns[i] = sub.fn
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
