package clients

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenbay/tokenbay/types"
)

var (
	marketAddr = common.HexToAddress("0x6Ee69FE54Fde472C88796502a6228eaF31a74F53")
	sellerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// fakeBackend serves ABI-packed responses keyed by method selector.
type fakeBackend struct {
	outputs map[[4]byte][]byte

	callFroms []common.Address
	sends     int
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.callFroms = append(b.callFroms, call.From)
	var selector [4]byte
	copy(selector[:], call.Data[:4])
	out, ok := b.outputs[selector]
	if !ok {
		return nil, ethereum.NotFound
	}
	return out, nil
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*coretypes.Header, error) {
	return &coretypes.Header{BaseFee: big.NewInt(1)}, nil
}

func (b *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}

func (b *fakeBackend) SendTransaction(context.Context, *coretypes.Transaction) error {
	b.sends++
	return nil
}

func (b *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]coretypes.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- coretypes.Log) (ethereum.Subscription, error) {
	return nil, errors.New("log subscriptions are not supported")
}

type staticSessions struct {
	session types.Session
}

func (s staticSessions) Current() types.Session { return s.session }

func mustABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	require.NoError(t, err)
	return parsed
}

func selectorOf(m abi.Method) [4]byte {
	var s [4]byte
	copy(s[:], m.ID)
	return s
}

func packOutput(t *testing.T, parsed abi.ABI, method string, values ...any) []byte {
	t.Helper()
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func sampleItems() []marketItem {
	return []marketItem{
		{TokenId: big.NewInt(1), Seller: sellerAddr, Owner: marketAddr, Price: big.NewInt(1000), Sold: false},
		{TokenId: big.NewInt(2), Seller: sellerAddr, Owner: ownerAddr, Price: big.NewInt(2000), Sold: true},
	}
}

func TestFetchMarketItems(t *testing.T) {
	parsed := mustABI(t)
	backend := &fakeBackend{outputs: map[[4]byte][]byte{
		selectorOf(parsed.Methods["fetchMarketItems"]): packOutput(t, parsed, "fetchMarketItems", sampleItems()),
	}}
	c, err := NewMarketContract(marketAddr, backend, staticSessions{}, nil)
	require.NoError(t, err)

	listings, err := c.FetchMarketItems(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, big.NewInt(1), listings[0].TokenID)
	assert.Equal(t, sellerAddr, listings[0].Seller)
	assert.Equal(t, big.NewInt(1000), listings[0].PriceWei)
	assert.False(t, listings[0].Sold)
	assert.True(t, listings[1].Sold)
}

func TestFetchMyNFTsSendsCallerIdentity(t *testing.T) {
	parsed := mustABI(t)
	backend := &fakeBackend{outputs: map[[4]byte][]byte{
		selectorOf(parsed.Methods["fetchMyNFTs"]): packOutput(t, parsed, "fetchMyNFTs", sampleItems()[:1]),
	}}
	c, err := NewMarketContract(marketAddr, backend, staticSessions{}, nil)
	require.NoError(t, err)

	listings, err := c.FetchMyNFTs(context.Background(), ownerAddr)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Len(t, backend.callFroms, 1)
	assert.Equal(t, ownerAddr, backend.callFroms[0])
}

func TestGetListingPrice(t *testing.T) {
	parsed := mustABI(t)
	backend := &fakeBackend{outputs: map[[4]byte][]byte{
		selectorOf(parsed.Methods["getListingPrice"]): packOutput(t, parsed, "getListingPrice", big.NewInt(25000000000000000)),
	}}
	c, err := NewMarketContract(marketAddr, backend, staticSessions{}, nil)
	require.NoError(t, err)

	fee, err := c.GetListingPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25000000000000000", fee.String())
}

func TestTokenURI(t *testing.T) {
	parsed := mustABI(t)
	backend := &fakeBackend{outputs: map[[4]byte][]byte{
		selectorOf(parsed.Methods["tokenURI"]): packOutput(t, parsed, "tokenURI", "https://gateway.example/ipfs/QmMeta"),
	}}
	c, err := NewMarketContract(marketAddr, backend, staticSessions{}, nil)
	require.NoError(t, err)

	uri, err := c.TokenURI(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/ipfs/QmMeta", uri)
}

func TestWritesGatedOnSession(t *testing.T) {
	backend := &fakeBackend{}
	c, err := NewMarketContract(marketAddr, backend, staticSessions{}, nil)
	require.NoError(t, err)

	_, err = c.CreateMarketSale(context.Background(), big.NewInt(1), big.NewInt(1000))
	require.Error(t, err)
	assert.Equal(t, types.ErrNotConnected, types.CodeOf(err))
	assert.Zero(t, backend.sends)

	_, err = c.CreateToken(context.Background(), "uri", big.NewInt(1), big.NewInt(1))
	require.Error(t, err)
	assert.Equal(t, types.ErrNotConnected, types.CodeOf(err))
	assert.Zero(t, backend.sends)
}

func TestWritesRequireSigner(t *testing.T) {
	acc := sellerAddr
	sessions := staticSessions{session: types.Session{
		Status:  types.StatusConnected,
		Account: &acc,
		ChainID: big.NewInt(97),
	}}
	backend := &fakeBackend{}
	c, err := NewMarketContract(marketAddr, backend, sessions, nil)
	require.NoError(t, err)

	_, err = c.CreateMarketSale(context.Background(), big.NewInt(1), big.NewInt(1000))
	require.Error(t, err)
	assert.Equal(t, types.ErrNotConnected, types.CodeOf(err))
	assert.Zero(t, backend.sends)
}

func TestParseItemCreated(t *testing.T) {
	parsed := mustABI(t)
	c, err := NewMarketContract(marketAddr, &fakeBackend{}, staticSessions{}, nil)
	require.NoError(t, err)

	ev := parsed.Events["MarketItemCreated"]
	data, err := ev.Inputs.NonIndexed().Pack(sellerAddr, ownerAddr, big.NewInt(5000), true)
	require.NoError(t, err)

	log := coretypes.Log{
		Address: marketAddr,
		Topics:  []common.Hash{ev.ID, common.BigToHash(big.NewInt(42))},
		Data:    data,
	}

	decoded, err := c.ParseItemCreated(log)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), decoded.TokenID)
	assert.Equal(t, sellerAddr, decoded.Seller)
	assert.Equal(t, ownerAddr, decoded.Owner)
	assert.Equal(t, big.NewInt(5000), decoded.Price)
	assert.True(t, decoded.Sold)

	_, err = c.ParseItemCreated(coretypes.Log{Topics: []common.Hash{{}}})
	assert.Error(t, err)
}

func TestItemCreatedTopicMatchesABI(t *testing.T) {
	parsed := mustABI(t)
	c, err := NewMarketContract(marketAddr, &fakeBackend{}, staticSessions{}, nil)
	require.NoError(t, err)

	assert.Equal(t, parsed.Events["MarketItemCreated"].ID, c.ItemCreatedTopic())
}
