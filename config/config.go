// Package config loads and validates the library configuration from a
// YAML file.
package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tokenbay/tokenbay/types"
)

type Config struct {
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Chain       ChainConfig       `yaml:"chain"`
	Provider    ProviderConfig    `yaml:"provider"`
	Pinning     PinningConfig     `yaml:"pinning"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`

	// StateDir holds the persisted was-connected flag. Empty keeps it
	// in memory only.
	StateDir string `yaml:"state_dir"`
}

// MarketplaceConfig pins the fixed contract the client talks to.
type MarketplaceConfig struct {
	Address string `yaml:"address" validate:"required,eth_addr"`
}

// ChainConfig describes the one supported chain.
type ChainConfig struct {
	ID               uint64   `yaml:"id" validate:"required"`
	Name             string   `yaml:"name" validate:"required"`
	RPCURLs          []string `yaml:"rpc_urls" validate:"min=1,dive,url"`
	CurrencyName     string   `yaml:"currency_name"`
	CurrencySymbol   string   `yaml:"currency_symbol" validate:"required"`
	CurrencyDecimals int      `yaml:"currency_decimals" validate:"required"`
	ExplorerURLs     []string `yaml:"explorer_urls" validate:"dive,url"`
}

// ProviderConfig points at the wallet-capable JSON-RPC endpoint and an
// optional signing key for writes.
type ProviderConfig struct {
	RPCURL     string `yaml:"rpc_url"`
	PrivateKey string `yaml:"private_key"`
}

type PinningConfig struct {
	FileEndpoint string `yaml:"file_endpoint" validate:"omitempty,url"`
	JSONEndpoint string `yaml:"json_endpoint" validate:"omitempty,url"`
	GatewayURL   string `yaml:"gateway_url" validate:"omitempty,url"`
	JWT          string `yaml:"jwt"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration for the reference deployment: the
// fixed marketplace contract on BSC Testnet with the public pinning
// endpoints (credential left empty).
func Default() *Config {
	chain := types.BSCTestnet()
	return &Config{
		Marketplace: MarketplaceConfig{
			Address: "0x6Ee69FE54Fde472C88796502a6228eaF31a74F53",
		},
		Chain: ChainConfig{
			ID:               chain.ChainID.Uint64(),
			Name:             chain.Name,
			RPCURLs:          chain.RPCURLs,
			CurrencyName:     chain.CurrencyName,
			CurrencySymbol:   chain.CurrencySymbol,
			CurrencyDecimals: chain.CurrencyDecimals,
			ExplorerURLs:     chain.BlockExplorerURLs,
		},
		Pinning: PinningConfig{
			FileEndpoint: "https://api.pinata.cloud/pinning/pinFileToIPFS",
			JSONEndpoint: "https://api.pinata.cloud/pinning/pinJSONToIPFS",
			GatewayURL:   "https://gateway.pinata.cloud",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("read config: %v", err),
		}
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("parse config: %v", err),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid config: %v", err),
		}
	}
	return nil
}

// ChainDefinition converts the chain section into the wallet-facing
// definition.
func (c *Config) ChainDefinition() types.ChainDefinition {
	return types.ChainDefinition{
		ChainID:           new(big.Int).SetUint64(c.Chain.ID),
		Name:              c.Chain.Name,
		RPCURLs:           c.Chain.RPCURLs,
		CurrencyName:      c.Chain.CurrencyName,
		CurrencySymbol:    c.Chain.CurrencySymbol,
		CurrencyDecimals:  c.Chain.CurrencyDecimals,
		BlockExplorerURLs: c.Chain.ExplorerURLs,
	}
}
