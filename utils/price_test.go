package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWei(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", FormatWei(wei, 18))
	assert.Equal(t, "0.000000000000000001", FormatWei(big.NewInt(1), 18))
	assert.Equal(t, "0", FormatWei(big.NewInt(0), 18))
	assert.Equal(t, "0", FormatWei(nil, 18))
}

func TestParseAmount(t *testing.T) {
	wei, err := ParseAmount("1.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", wei.String())

	wei, err = ParseAmount("0.000000000000000001", 18)
	require.NoError(t, err)
	assert.Equal(t, "1", wei.String())

	_, err = ParseAmount("not a number", 18)
	assert.Error(t, err)

	_, err = ParseAmount("-1", 18)
	assert.ErrorContains(t, err, "negative")

	// More fractional digits than the chain supports must not be rounded.
	_, err = ParseAmount("0.0000000000000000001", 18)
	assert.ErrorContains(t, err, "decimal places")
}

func TestParseFormatRoundTrip(t *testing.T) {
	wei, err := ParseAmount("0.05", 18)
	require.NoError(t, err)
	assert.Equal(t, "0.05", FormatWei(wei, 18))
}

func TestShortAddress(t *testing.T) {
	addr := common.HexToAddress("0x6Ee69FE54Fde472C88796502a6228eaF31a74F53")
	assert.Equal(t, "0x6Ee6...4F53", ShortAddress(addr))
}
