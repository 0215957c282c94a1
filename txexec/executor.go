// Package txexec drives a submitted contract write to one on-chain
// confirmation and maps heterogeneous failure causes onto the stable
// error taxonomy.
package txexec

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/tokenbay/tokenbay/clients"
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/metrics"
	"github.com/tokenbay/tokenbay/types"
)

// ReceiptSource is the subset of the chain backend needed to observe
// confirmations. *ethclient.Client satisfies it.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*coretypes.Receipt, error)
}

// SubmitFunc broadcasts a contract write and returns the pending
// transaction. It is expected to fail before broadcast on wallet
// rejection or provider errors.
type SubmitFunc func() (*coretypes.Transaction, error)

// Callbacks receive progress for UI feedback. All fields are optional.
type Callbacks struct {
	OnSubmitted func(types.TransactionRecord)
	OnConfirmed func(types.TransactionRecord)
	OnFailed    func(types.TransactionRecord)
}

const defaultReceiptPoll = 2 * time.Second

// Executor runs write transactions. A failed transaction is never
// resubmitted here; retry is a user-initiated action at a higher layer.
type Executor struct {
	receipts ReceiptSource
	poll     time.Duration
	log      logger.Logger
	rec      metrics.Recorder

	inflight atomic.Int32
}

func NewExecutor(receipts ReceiptSource, log logger.Logger, rec metrics.Recorder) *Executor {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Executor{
		receipts: receipts,
		poll:     defaultReceiptPoll,
		log:      log,
		rec:      rec,
	}
}

// IsProcessing reports whether any transaction is currently in flight.
// Informational, for disabling duplicate submission in a UI; it is not
// a mutex and concurrent Execute calls are allowed.
func (e *Executor) IsProcessing() bool {
	return e.inflight.Load() > 0
}

// Execute invokes submit, waits for one confirmation and returns the
// receipt. Failures at any stage are classified before propagation.
// The processing flag is released on every exit path.
func (e *Executor) Execute(ctx context.Context, submit SubmitFunc, cb Callbacks) (*coretypes.Receipt, error) {
	e.inflight.Add(1)
	defer e.inflight.Add(-1)

	started := time.Now()
	record := types.TransactionRecord{
		ID:    uuid.NewString(),
		State: types.TxSubmitted,
	}

	tx, err := submit()
	if err != nil {
		// Failed before broadcast: classify and propagate immediately,
		// no confirmation wait.
		return nil, e.fail(record, cb, err)
	}

	hash := tx.Hash()
	record.Hash = &hash
	e.log.Info("transaction submitted", map[string]any{
		"id":   record.ID,
		"hash": hash.Hex(),
	})
	e.rec.IncCounter(metrics.EventTxSubmitted, nil)
	if cb.OnSubmitted != nil {
		cb.OnSubmitted(record)
	}

	receipt, err := e.waitMined(ctx, hash)
	if err != nil {
		return nil, e.fail(record, cb, err)
	}
	if receipt.Status == coretypes.ReceiptStatusFailed {
		return nil, e.fail(record, cb, &types.Error{
			Code:    types.ErrNonceOrState,
			Message: "transaction reverted on-chain, please try again",
		})
	}

	record.State = types.TxConfirmed
	record.Receipt = receipt
	e.log.Info("transaction confirmed", map[string]any{
		"id":    record.ID,
		"hash":  hash.Hex(),
		"block": receipt.BlockNumber,
	})
	e.rec.IncCounter(metrics.EventTxConfirmed, nil)
	e.rec.ObserveLatency("tx_confirm", time.Since(started), nil)
	if cb.OnConfirmed != nil {
		cb.OnConfirmed(record)
	}
	return receipt, nil
}

func (e *Executor) fail(record types.TransactionRecord, cb Callbacks, err error) error {
	classified := clients.Classify(err)
	record.State = types.TxFailed
	record.Err = classified

	e.log.Warn("transaction failed", map[string]any{
		"id":   record.ID,
		"code": classified.Code,
		"err":  classified.Message,
	})
	e.rec.IncCounter(metrics.EventTxFailed, nil)
	if cb.OnFailed != nil {
		cb.OnFailed(record)
	}
	return classified
}

// waitMined polls for the receipt until it appears. No timeout is
// enforced here; a caller that needs one bounds ctx.
func (e *Executor) waitMined(ctx context.Context, hash common.Hash) (*coretypes.Receipt, error) {
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		receipt, err := e.receipts.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
