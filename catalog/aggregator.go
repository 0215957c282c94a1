// Package catalog joins on-chain listings with their off-chain
// metadata into display-ready snapshots, tolerating per-item failures.
package catalog

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/metrics"
	"github.com/tokenbay/tokenbay/types"
)

// Scope selects which listing set to aggregate.
type Scope string

const (
	ScopeAllListings Scope = "all"
	ScopeOwnedByMe   Scope = "owned"
)

// ContractReader is the read-only contract view the aggregator joins
// against. *clients.MarketContract satisfies it.
type ContractReader interface {
	FetchMarketItems(ctx context.Context) ([]types.Listing, error)
	FetchMyNFTs(ctx context.Context, from common.Address) ([]types.Listing, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}

// SessionSource supplies the caller identity for the owned scope.
type SessionSource interface {
	Current() types.Session
}

const defaultFetchLimit = 8

// Aggregator builds catalog snapshots. It never retains a snapshot
// after returning it; each LoadAll fully replaces the previous result
// at the caller.
type Aggregator struct {
	reader   ContractReader
	fetcher  MetadataFetcher
	sessions SessionSource
	log      logger.Logger
	rec      metrics.Recorder
	limit    int
}

func NewAggregator(
	reader ContractReader,
	fetcher MetadataFetcher,
	sessions SessionSource,
	log logger.Logger,
	rec metrics.Recorder,
) *Aggregator {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Aggregator{
		reader:   reader,
		fetcher:  fetcher,
		sessions: sessions,
		log:      log,
		rec:      rec,
		limit:    defaultFetchLimit,
	}
}

// LoadAll fetches the listings for scope and resolves each one's
// metadata concurrently. An item whose URI resolution, fetch or parse
// fails is logged and dropped; one corrupt listing never aborts the
// aggregation. The result preserves the order of the raw listing
// sequence, with failed items omitted. Prices stay exact wei integers.
func (a *Aggregator) LoadAll(ctx context.Context, scope Scope) ([]types.CatalogItem, error) {
	started := time.Now()

	listings, err := a.fetchListings(ctx, scope)
	if err != nil {
		return nil, err
	}

	resolved := make([]*types.CatalogItem, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, listing := range listings {
		i, listing := i, listing
		g.Go(func() error {
			uri, err := a.reader.TokenURI(gctx, listing.TokenID)
			if err != nil {
				a.drop(listing, "token URI resolution failed", err)
				return nil
			}
			meta, err := a.fetcher.FetchDocument(gctx, uri)
			if err != nil {
				a.drop(listing, "metadata fetch failed", err)
				return nil
			}
			resolved[i] = &types.CatalogItem{Listing: listing, Metadata: *meta}
			return nil
		})
	}
	// Per-item failures are swallowed above; Wait only propagates a
	// cancelled context.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]types.CatalogItem, 0, len(listings))
	for _, item := range resolved {
		if item != nil {
			items = append(items, *item)
		}
	}

	a.rec.ObserveLatency("catalog_load", time.Since(started), nil)
	a.log.Debug("catalog loaded", map[string]any{
		"scope":   string(scope),
		"total":   len(listings),
		"dropped": len(listings) - len(items),
	})
	return items, nil
}

func (a *Aggregator) fetchListings(ctx context.Context, scope Scope) ([]types.Listing, error) {
	switch scope {
	case ScopeOwnedByMe:
		session := a.sessions.Current()
		if !session.Connected() {
			return nil, &types.Error{
				Code:    types.ErrNotConnected,
				Message: "connect a wallet to view owned assets",
			}
		}
		return a.reader.FetchMyNFTs(ctx, *session.Account)
	default:
		return a.reader.FetchMarketItems(ctx)
	}
}

func (a *Aggregator) drop(listing types.Listing, reason string, err error) {
	a.rec.IncCounter(metrics.EventCatalogItemDropped, nil)
	a.log.Warn(reason, map[string]any{
		"code":    types.ErrPartialAggregation,
		"tokenId": listing.TokenID.String(),
		"err":     err.Error(),
	})
}
