// Package utils holds presentation helpers. On-chain amounts stay
// exact wei integers everywhere inside the library; conversion to a
// human-readable decimal unit happens only here, at the presentation
// boundary.
package utils

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// FormatWei renders an exact wei amount as a decimal string in the
// chain's native unit.
func FormatWei(wei *big.Int, decimals int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -int32(decimals)).String()
}

// ParseAmount converts a user-entered decimal amount in the native unit
// into exact wei. Amounts with more fractional digits than the chain
// supports are rejected rather than rounded.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", amount)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	return shifted.BigInt(), nil
}

// ShortAddress abbreviates an address for display: 0x1234...abcd.
func ShortAddress(addr common.Address) string {
	s := addr.Hex()
	return s[:6] + "..." + s[len(s)-4:]
}
