package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenbay/tokenbay/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenbay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint64(97), cfg.Chain.ID)
	assert.Equal(t, "TBNB", cfg.Chain.CurrencySymbol)
	assert.Equal(t, 18, cfg.Chain.CurrencyDecimals)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  rpc_url: http://localhost:8545
log:
  level: debug
state_dir: /tmp/tokenbay
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.Provider.RPCURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/tokenbay", cfg.StateDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, "0x6Ee69FE54Fde472C88796502a6228eaF31a74F53", cfg.Marketplace.Address)
	assert.Equal(t, uint64(97), cfg.Chain.ID)
}

func TestLoadRejectsBadAddress(t *testing.T) {
	path := writeConfig(t, `
marketplace:
  address: not-an-address
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestChainDefinition(t *testing.T) {
	def := Default().ChainDefinition()

	assert.Equal(t, big.NewInt(97), def.ChainID)
	assert.Equal(t, "0x61", def.HexID())
	assert.NotEmpty(t, def.RPCURLs)
}
