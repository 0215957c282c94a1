package clients

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/tokenbay/tokenbay/types"
)

// marketplaceABI is the fixed ABI of the marketplace contract.
const marketplaceABI = `[
  {"type":"function","name":"createToken","stateMutability":"payable","inputs":[{"name":"tokenURI","type":"string"},{"name":"price","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"createMarketSale","stateMutability":"payable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"fetchMarketItems","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"tokenId","type":"uint256"},{"name":"seller","type":"address"},{"name":"owner","type":"address"},{"name":"price","type":"uint256"},{"name":"sold","type":"bool"}]}]},
  {"type":"function","name":"fetchMyNFTs","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"tokenId","type":"uint256"},{"name":"seller","type":"address"},{"name":"owner","type":"address"},{"name":"price","type":"uint256"},{"name":"sold","type":"bool"}]}]},
  {"type":"function","name":"getListingPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"event","name":"MarketItemCreated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"seller","type":"address","indexed":false},{"name":"owner","type":"address","indexed":false},{"name":"price","type":"uint256","indexed":false},{"name":"sold","type":"bool","indexed":false}]}
]`

// marketItem mirrors the on-chain listing tuple for ABI decoding.
type marketItem struct {
	TokenId *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
}

// SessionSource supplies the current session snapshot for write gating.
type SessionSource interface {
	Current() types.Session
}

// MarketItemCreated is the decoded creation event.
type MarketItemCreated struct {
	TokenID *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
	Raw     coretypes.Log
}

// MarketContract is a typed facade over the fixed marketplace contract.
// It never caches; every call hits the network.
type MarketContract struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
	sessions SessionSource
	signer   Signer
}

// NewMarketContract binds the fixed marketplace ABI at the given address.
// signer may be nil for a read-only facade.
func NewMarketContract(
	address common.Address,
	backend bind.ContractBackend,
	sessions SessionSource,
	signer Signer,
) (*MarketContract, error) {
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace ABI: %w", err)
	}

	return &MarketContract{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		sessions: sessions,
		signer:   signer,
	}, nil
}

// Address returns the fixed contract address.
func (c *MarketContract) Address() common.Address {
	return c.address
}

// FetchMarketItems returns every unsold listing on the marketplace.
func (c *MarketContract) FetchMarketItems(ctx context.Context) ([]types.Listing, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "fetchMarketItems"); err != nil {
		return nil, err
	}
	items := *abi.ConvertType(out[0], new([]marketItem)).(*[]marketItem)
	return toListings(items), nil
}

// FetchMyNFTs returns the listings owned by from. The contract resolves
// ownership from the caller identity, so from is set as the call sender.
func (c *MarketContract) FetchMyNFTs(ctx context.Context, from common.Address) ([]types.Listing, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: from}
	if err := c.contract.Call(opts, &out, "fetchMyNFTs"); err != nil {
		return nil, err
	}
	items := *abi.ConvertType(out[0], new([]marketItem)).(*[]marketItem)
	return toListings(items), nil
}

// GetListingPrice returns the fee the marketplace charges for creating
// a listing, in wei.
func (c *MarketContract) GetListingPrice(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getListingPrice"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TokenURI resolves the metadata URI for a token.
func (c *MarketContract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokenURI", tokenID); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// CreateToken mints and lists a new token. valueWei carries the listing
// fee required by the contract.
func (c *MarketContract) CreateToken(ctx context.Context, uri string, priceWei, valueWei *big.Int) (*coretypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, valueWei)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "createToken", uri, priceWei)
}

// CreateMarketSale purchases a listed token. valueWei must equal the
// listing price.
func (c *MarketContract) CreateMarketSale(ctx context.Context, tokenID, valueWei *big.Int) (*coretypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, valueWei)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "createMarketSale", tokenID)
}

// transactOpts gates writes on an active session before anything is
// sent to the network.
func (c *MarketContract) transactOpts(ctx context.Context, valueWei *big.Int) (*bind.TransactOpts, error) {
	session := c.sessions.Current()
	if !session.Connected() {
		return nil, &types.Error{
			Code:    types.ErrNotConnected,
			Message: "connect a wallet before sending transactions",
		}
	}
	if c.signer == nil {
		return nil, &types.Error{
			Code:    types.ErrNotConnected,
			Message: "no signer available for the connected session",
		}
	}

	opts, err := c.signer.TransactOpts(ctx, session.ChainID)
	if err != nil {
		return nil, err
	}
	opts.Value = valueWei
	return opts, nil
}

// ItemCreatedTopic returns the MarketItemCreated event signature topic
// for log filtering.
func (c *MarketContract) ItemCreatedTopic() common.Hash {
	return c.abi.Events["MarketItemCreated"].ID
}

// ParseItemCreated decodes a MarketItemCreated log.
func (c *MarketContract) ParseItemCreated(log coretypes.Log) (*MarketItemCreated, error) {
	event := new(MarketItemCreated)
	ev := c.abi.Events["MarketItemCreated"]

	if len(log.Topics) < 2 || log.Topics[0] != ev.ID {
		return nil, fmt.Errorf("log is not a MarketItemCreated event")
	}

	// UnpackLog fills TokenId from the indexed topic and the rest from
	// the log data.
	var data struct {
		TokenId *big.Int
		Seller  common.Address
		Owner   common.Address
		Price   *big.Int
		Sold    bool
	}
	if err := c.contract.UnpackLog(&data, "MarketItemCreated", log); err != nil {
		return nil, err
	}

	event.TokenID = data.TokenId
	event.Seller = data.Seller
	event.Owner = data.Owner
	event.Price = data.Price
	event.Sold = data.Sold
	event.Raw = log
	return event, nil
}

func toListings(items []marketItem) []types.Listing {
	listings := make([]types.Listing, 0, len(items))
	for _, item := range items {
		listings = append(listings, types.Listing{
			TokenID:  item.TokenId,
			Seller:   item.Seller,
			Owner:    item.Owner,
			PriceWei: item.Price,
			Sold:     item.Sold,
		})
	}
	return listings
}
