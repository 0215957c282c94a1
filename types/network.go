package types

import (
	"fmt"
	"math/big"
)

// ChainDefinition describes one supported chain the way a wallet
// expects it for wallet_addEthereumChain.
type ChainDefinition struct {
	ChainID           *big.Int
	Name              string
	RPCURLs           []string
	CurrencyName      string
	CurrencySymbol    string
	CurrencyDecimals  int
	BlockExplorerURLs []string
}

// HexID returns the chain id in the 0x-prefixed hex form wallets use.
func (d ChainDefinition) HexID() string {
	if d.ChainID == nil {
		return "0x0"
	}
	return "0x" + d.ChainID.Text(16)
}

// AddressURL returns the explorer page for an address, or "" when the
// definition carries no explorer.
func (d ChainDefinition) AddressURL(address string) string {
	if len(d.BlockExplorerURLs) == 0 {
		return ""
	}
	return fmt.Sprintf("%s/address/%s", d.BlockExplorerURLs[0], address)
}

// BSCTestnet is the chain the reference marketplace contract is
// deployed on.
func BSCTestnet() ChainDefinition {
	return ChainDefinition{
		ChainID:           big.NewInt(97),
		Name:              "BSC Testnet",
		RPCURLs:           []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
		CurrencyName:      "Test BNB",
		CurrencySymbol:    "TBNB",
		CurrencyDecimals:  18,
		BlockExplorerURLs: []string{"https://testnet.bscscan.com"},
	}
}
