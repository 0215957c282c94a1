package txexec

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenbay/tokenbay/types"
)

type fakeReceipts struct {
	notFoundPolls int // polls returning not-found before the receipt
	receipt       *coretypes.Receipt
	err           error

	calls int
}

func (f *fakeReceipts) TransactionReceipt(context.Context, common.Hash) (*coretypes.Receipt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.notFoundPolls {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func pendingTx() *coretypes.Transaction {
	to := common.HexToAddress("0x6Ee69FE54Fde472C88796502a6228eaF31a74F53")
	return coretypes.NewTx(&coretypes.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    big.NewInt(1),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
}

func successReceipt() *coretypes.Receipt {
	return &coretypes.Receipt{
		Status:      coretypes.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(100),
	}
}

func TestExecuteConfirms(t *testing.T) {
	receipts := &fakeReceipts{receipt: successReceipt()}
	e := NewExecutor(receipts, nil, nil)

	var submitted, confirmed *types.TransactionRecord
	cb := Callbacks{
		OnSubmitted: func(r types.TransactionRecord) { submitted = &r },
		OnConfirmed: func(r types.TransactionRecord) { confirmed = &r },
		OnFailed:    func(r types.TransactionRecord) { t.Fatalf("unexpected failure: %v", r.Err) },
	}

	receipt, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		return pendingTx(), nil
	}, cb)

	require.NoError(t, err)
	assert.Equal(t, coretypes.ReceiptStatusSuccessful, receipt.Status)
	require.NotNil(t, submitted)
	assert.Equal(t, types.TxSubmitted, submitted.State)
	require.NotNil(t, submitted.Hash)
	require.NotNil(t, confirmed)
	assert.Equal(t, types.TxConfirmed, confirmed.State)
	assert.Equal(t, submitted.ID, confirmed.ID)
	assert.False(t, e.IsProcessing())
}

func TestExecuteRejectionSkipsConfirmationWait(t *testing.T) {
	receipts := &fakeReceipts{receipt: successReceipt()}
	e := NewExecutor(receipts, nil, nil)

	var failed *types.TransactionRecord
	cb := Callbacks{
		OnSubmitted: func(types.TransactionRecord) { t.Fatal("must not reach submission") },
		OnFailed:    func(r types.TransactionRecord) { failed = &r },
	}

	_, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		return nil, errors.New("ACTION_REJECTED: user rejected transaction")
	}, cb)

	require.Error(t, err)
	assert.Equal(t, types.ErrUserRejected, types.CodeOf(err))
	assert.Zero(t, receipts.calls)
	require.NotNil(t, failed)
	assert.Equal(t, types.TxFailed, failed.State)
	assert.Nil(t, failed.Hash)
	assert.False(t, e.IsProcessing())
}

func TestExecuteRevertedReceiptFails(t *testing.T) {
	receipts := &fakeReceipts{
		receipt: &coretypes.Receipt{Status: coretypes.ReceiptStatusFailed},
	}
	e := NewExecutor(receipts, nil, nil)

	var failed *types.TransactionRecord
	_, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		return pendingTx(), nil
	}, Callbacks{OnFailed: func(r types.TransactionRecord) { failed = &r }})

	require.Error(t, err)
	assert.Equal(t, types.ErrNonceOrState, types.CodeOf(err))
	require.NotNil(t, failed)
	require.NotNil(t, failed.Hash)
	assert.False(t, e.IsProcessing())
}

func TestExecuteToleratesNotFoundUntilMined(t *testing.T) {
	receipts := &fakeReceipts{notFoundPolls: 2, receipt: successReceipt()}
	e := NewExecutor(receipts, nil, nil)
	e.poll = time.Millisecond

	receipt, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		return pendingTx(), nil
	}, Callbacks{})

	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, 3, receipts.calls)
}

func TestExecuteSurfacesReceiptError(t *testing.T) {
	receipts := &fakeReceipts{err: errors.New("connection reset")}
	e := NewExecutor(receipts, nil, nil)

	_, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		return pendingTx(), nil
	}, Callbacks{})

	require.Error(t, err)
	assert.Equal(t, types.ErrNetworkError, types.CodeOf(err))
	assert.False(t, e.IsProcessing())
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	receipts := &fakeReceipts{notFoundPolls: int(^uint(0) >> 1)}
	e := NewExecutor(receipts, nil, nil)
	e.poll = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Execute(ctx, func() (*coretypes.Transaction, error) {
		return pendingTx(), nil
	}, Callbacks{})

	require.Error(t, err)
	assert.False(t, e.IsProcessing())
}

func TestIsProcessingWhileInFlight(t *testing.T) {
	receipts := &fakeReceipts{receipt: successReceipt()}
	e := NewExecutor(receipts, nil, nil)

	var seen bool
	_, err := e.Execute(context.Background(), func() (*coretypes.Transaction, error) {
		seen = e.IsProcessing()
		return pendingTx(), nil
	}, Callbacks{})

	require.NoError(t, err)
	assert.True(t, seen)
	assert.False(t, e.IsProcessing())
}
