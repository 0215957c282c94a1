// Package network derives whether the session is on the supported
// chain and drives the wallet onto it when it is not.
package network

import (
	"context"

	"github.com/tokenbay/tokenbay/clients"
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/types"
)

// Guard holds the one supported chain the marketplace contract lives on.
type Guard struct {
	provider clients.Provider
	def      types.ChainDefinition
	log      logger.Logger
}

func NewGuard(provider clients.Provider, def types.ChainDefinition, log logger.Logger) *Guard {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Guard{provider: provider, def: def, log: log}
}

// Supported returns the supported chain definition.
func (g *Guard) Supported() types.ChainDefinition {
	return g.def
}

// IsSupported is a pure function of the session's chain id.
func (g *Guard) IsSupported(s types.Session) bool {
	return s.ChainID != nil && s.ChainID.Cmp(g.def.ChainID) == 0
}

// EnsureChain asks the wallet to switch to the supported chain. When
// the wallet reports the chain as unknown, the definition is added and
// the switch retried exactly once. Every other failure is surfaced to
// the caller; this operation never silently succeeds.
func (g *Guard) EnsureChain(ctx context.Context) error {
	err := g.provider.SwitchChain(ctx, g.def.ChainID)
	if err == nil {
		return nil
	}

	classified := clients.Classify(err)
	if classified.Code != types.ErrUnknownChain {
		return classified
	}

	g.log.Info("chain unknown to wallet, adding definition", map[string]any{
		"chain": g.def.HexID(),
	})
	if err := g.provider.AddChain(ctx, g.def); err != nil {
		return clients.Classify(err)
	}
	if err := g.provider.SwitchChain(ctx, g.def.ChainID); err != nil {
		return clients.Classify(err)
	}
	return nil
}
