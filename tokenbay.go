// Package tokenbay is a client library for a fixed on-chain NFT
// marketplace: it tracks a wallet session, gates operations on the
// supported chain, drives purchase and mint transactions to
// confirmation, and aggregates listings with their off-chain metadata
// into display-ready catalogs.
package tokenbay

import (
	"context"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tokenbay/tokenbay/catalog"
	"github.com/tokenbay/tokenbay/clients"
	"github.com/tokenbay/tokenbay/config"
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/metrics"
	"github.com/tokenbay/tokenbay/network"
	"github.com/tokenbay/tokenbay/pinning"
	"github.com/tokenbay/tokenbay/session"
	"github.com/tokenbay/tokenbay/txexec"
	"github.com/tokenbay/tokenbay/types"
)

// Market is the assembled client. Views call it; it owns nothing
// visual.
type Market struct {
	cfg  *config.Config
	log  logger.Logger
	rec  metrics.Recorder
	http *http.Client

	provider clients.Provider
	signer   clients.Signer
	backend  bind.ContractBackend
	receipts txexec.ReceiptSource

	session  *session.Wallet
	guard    *network.Guard
	contract *clients.MarketContract
	executor *txexec.Executor
	catalog  *catalog.Aggregator
	pin      *pinning.Client
}

// New wires the client from configuration. On startup the session is
// silently resumed when a previous run left the was-connected flag set;
// no permission prompt is ever shown here.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Market, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Market{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		if cfg.Log.Level != "" {
			m.log = logger.NewZapLogger(cfg.Log.Level)
		} else {
			m.log = logger.NoopLogger{}
		}
	}
	if m.rec == nil {
		if cfg.Metrics.Enabled {
			m.rec = metrics.NewPrometheusRecorder()
		} else {
			m.rec = metrics.NoopRecorder{}
		}
	}

	if m.provider == nil {
		provider, err := clients.NewRPCProvider(ctx, cfg.Provider.RPCURL, m.log)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	// An injected provider may carry its own backend; otherwise the
	// caller must supply one. A nil backend or receipt source would
	// only surface as a panic deep inside a contract call.
	if m.backend == nil || m.receipts == nil {
		if bp, ok := m.provider.(interface{ Backend() *ethclient.Client }); ok {
			if m.backend == nil {
				m.backend = bp.Backend()
			}
			if m.receipts == nil {
				m.receipts = bp.Backend()
			}
		}
	}
	if m.backend == nil || m.receipts == nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: "no contract backend or receipt source; supply one alongside the injected provider",
		}
	}

	if m.signer == nil && cfg.Provider.PrivateKey != "" {
		signer, err := clients.NewKeyedSigner(cfg.Provider.PrivateKey)
		if err != nil {
			return nil, err
		}
		m.signer = signer
	}

	var flags session.FlagStore
	if cfg.StateDir != "" {
		flags = session.NewFileFlagStore(cfg.StateDir)
	}
	m.session = session.NewWallet(m.provider, flags, m.log, m.rec)
	m.guard = network.NewGuard(m.provider, cfg.ChainDefinition(), m.log)

	contract, err := clients.NewMarketContract(
		common.HexToAddress(cfg.Marketplace.Address),
		m.backend,
		m.session,
		m.signer,
	)
	if err != nil {
		return nil, err
	}
	m.contract = contract

	m.executor = txexec.NewExecutor(m.receipts, m.log, m.rec)
	m.catalog = catalog.NewAggregator(
		contract,
		catalog.NewHTTPFetcher(m.http),
		m.session,
		m.log,
		m.rec,
	)
	m.pin = pinning.New(pinning.Config{
		FileEndpoint: cfg.Pinning.FileEndpoint,
		JSONEndpoint: cfg.Pinning.JSONEndpoint,
		GatewayURL:   cfg.Pinning.GatewayURL,
		JWT:          cfg.Pinning.JWT,
	}, m.http, m.log)

	if err := m.session.Resume(ctx); err != nil {
		m.log.Warn("silent session resume failed", map[string]any{"err": err.Error()})
	}
	return m, nil
}

// Connect requests wallet permission and establishes the session.
func (m *Market) Connect(ctx context.Context) error {
	return m.session.Connect(ctx)
}

// Disconnect resets the session and clears the persisted flag.
func (m *Market) Disconnect() {
	m.session.Disconnect()
}

// CurrentSession returns a read-only session snapshot.
func (m *Market) CurrentSession() types.Session {
	return m.session.Current()
}

// SubscribeSession registers fn for session-change notifications and
// returns an unsubscribe function.
func (m *Market) SubscribeSession(fn func(types.Session)) func() {
	return m.session.Subscribe(fn)
}

// OnSupportedChain reports whether the session currently points at the
// marketplace's chain.
func (m *Market) OnSupportedChain() bool {
	return m.guard.IsSupported(m.session.Current())
}

// EnsureChain switches the wallet to the supported chain, adding its
// definition when the wallet does not know it.
func (m *Market) EnsureChain(ctx context.Context) error {
	return m.guard.EnsureChain(ctx)
}

// Browse loads the full marketplace catalog.
func (m *Market) Browse(ctx context.Context) ([]types.CatalogItem, error) {
	return m.catalog.LoadAll(ctx, catalog.ScopeAllListings)
}

// Owned loads the catalog of assets owned by the connected account.
func (m *Market) Owned(ctx context.Context) ([]types.CatalogItem, error) {
	return m.catalog.LoadAll(ctx, catalog.ScopeOwnedByMe)
}

// ListingFee returns the marketplace's listing fee in wei.
func (m *Market) ListingFee(ctx context.Context) (*big.Int, error) {
	return m.contract.GetListingPrice(ctx)
}

// Buy purchases the listed token for exactly priceWei.
func (m *Market) Buy(ctx context.Context, tokenID, priceWei *big.Int, cb txexec.Callbacks) (*coretypes.Receipt, error) {
	return m.executor.Execute(ctx, func() (*coretypes.Transaction, error) {
		return m.contract.CreateMarketSale(ctx, tokenID, priceWei)
	}, cb)
}

// Mint pins the image and metadata document, then creates and lists the
// token at priceWei, paying the listing fee.
func (m *Market) Mint(
	ctx context.Context,
	name, description string,
	priceWei *big.Int,
	imageName string,
	image io.Reader,
	cb txexec.Callbacks,
) (*coretypes.Receipt, error) {
	imageURI, err := m.pin.PinFile(ctx, imageName, image)
	if err != nil {
		return nil, err
	}

	tokenURI, err := m.pin.PinJSON(ctx, types.Metadata{
		Name:        name,
		Description: description,
		ImageURI:    imageURI,
	})
	if err != nil {
		return nil, err
	}

	fee, err := m.contract.GetListingPrice(ctx)
	if err != nil {
		return nil, err
	}

	return m.executor.Execute(ctx, func() (*coretypes.Transaction, error) {
		return m.contract.CreateToken(ctx, tokenURI, priceWei, fee)
	}, cb)
}

// IsProcessing reports whether a write transaction is in flight, for
// disabling duplicate submission in a UI.
func (m *Market) IsProcessing() bool {
	return m.executor.IsProcessing()
}

// ExplorerAddressURL returns the block-explorer page for an address.
func (m *Market) ExplorerAddressURL(addr common.Address) string {
	return m.guard.Supported().AddressURL(addr.Hex())
}

// Contract exposes the typed contract facade.
func (m *Market) Contract() *clients.MarketContract {
	return m.contract
}

// Close releases the provider connection.
func (m *Market) Close() {
	if m.provider != nil {
		m.provider.Close()
	}
}
