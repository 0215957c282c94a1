package clients

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenbay/tokenbay/types"
)

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "rpc code 4001",
			err:  codedError{code: 4001, msg: "User rejected the request."},
			want: types.ErrUserRejected,
		},
		{
			name: "rpc code 4902",
			err:  codedError{code: 4902, msg: "Unrecognized chain ID."},
			want: types.ErrUnknownChain,
		},
		{
			name: "action rejected marker",
			err:  errors.New("ACTION_REJECTED: ethers-user-denied"),
			want: types.ErrUserRejected,
		},
		{
			name: "user denied phrasing",
			err:  errors.New("MetaMask Tx Signature: User denied transaction signature"),
			want: types.ErrUserRejected,
		},
		{
			name: "insufficient funds",
			err:  errors.New("insufficient funds for gas * price + value"),
			want: types.ErrInsufficientFunds,
		},
		{
			name: "nonce too low",
			err:  errors.New("nonce too low"),
			want: types.ErrNonceOrState,
		},
		{
			name: "replacement underpriced",
			err:  errors.New("replacement transaction underpriced"),
			want: types.ErrNonceOrState,
		},
		{
			name: "already known",
			err:  errors.New("already known"),
			want: types.ErrNonceOrState,
		},
		{
			name: "anything else",
			err:  errors.New("dial tcp: connection refused"),
			want: types.ErrNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyPassesThroughClassifiedErrors(t *testing.T) {
	orig := &types.Error{Code: types.ErrNotConnected, Message: "connect a wallet first"}

	assert.Same(t, orig, Classify(orig))

	wrapped := fmt.Errorf("loading catalog: %w", orig)
	assert.Same(t, orig, Classify(wrapped))
}
