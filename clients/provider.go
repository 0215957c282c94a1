// Package clients wraps the external wallet provider and the fixed
// marketplace contract behind typed interfaces.
package clients

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/types"
)

// Provider exposes the capabilities the library needs from the external
// wallet / JSON-RPC provider. It is injected rather than reached as an
// ambient global so the core stays testable with a fake implementation.
type Provider interface {
	// Accounts lists already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)

	// RequestAccounts asks the wallet for account permission and
	// returns the authorized account list.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)

	// SwitchChain asks the wallet to point at the given chain. A chain
	// the wallet does not know is reported as UNKNOWN_CHAIN.
	SwitchChain(ctx context.Context, chainID *big.Int) error

	// AddChain hands the wallet a full chain definition.
	AddChain(ctx context.Context, def types.ChainDefinition) error

	// OnAccountsChanged and OnChainChanged register callbacks invoked
	// serially whenever the provider observes a change.
	OnAccountsChanged(fn func([]common.Address))
	OnChainChanged(fn func(*big.Int))

	Close()
}

// defaultPollInterval paces the change-event watcher; the injected
// browser provider pushes these events, an RPC endpoint must be polled.
const defaultPollInterval = 4 * time.Second

// RPCProvider implements Provider over a wallet-capable JSON-RPC
// endpoint using go-ethereum's rpc and ethclient packages.
type RPCProvider struct {
	rpc *gethrpc.Client
	eth *ethclient.Client
	log logger.Logger

	poll time.Duration

	mu         sync.Mutex
	accountFns []func([]common.Address)
	chainFns   []func(*big.Int)
	watchOnce  sync.Once
	closeOnce  sync.Once
	stop       chan struct{}

	seenAccounts bool
	lastAccounts []common.Address
	lastChain    *big.Int
}

// NewRPCProvider dials the endpoint. An unreachable endpoint is the
// no-provider condition and must be surfaced to the user as such.
func NewRPCProvider(ctx context.Context, rawURL string, log logger.Logger) (*RPCProvider, error) {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rawURL == "" {
		return nil, &types.Error{
			Code:    types.ErrNoProvider,
			Message: "no wallet provider configured; set a provider RPC URL",
		}
	}

	rpcClient, err := gethrpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrNoProvider,
			Message: "wallet provider is unreachable; install or configure one",
			Data:    err.Error(),
		}
	}

	return &RPCProvider{
		rpc:  rpcClient,
		eth:  ethclient.NewClient(rpcClient),
		log:  log,
		poll: defaultPollInterval,
		stop: make(chan struct{}),
	}, nil
}

// Backend returns the eth client for contract binding and receipt polling.
func (p *RPCProvider) Backend() *ethclient.Client {
	return p.eth
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	// Request permission first, then the account list, mirroring the
	// wallet_requestPermissions + eth_requestAccounts handshake.
	if err := p.rpc.CallContext(ctx, nil, "wallet_requestPermissions",
		map[string]any{"eth_accounts": map[string]any{}},
	); err != nil {
		p.log.Debug("wallet_requestPermissions not honored by provider", map[string]any{
			"err": err.Error(),
		})
	}

	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.eth.BalanceAt(ctx, account, nil)
}

func (p *RPCProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.eth.ChainID(ctx)
}

func (p *RPCProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	return p.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain",
		map[string]string{"chainId": "0x" + chainID.Text(16)},
	)
}

// addChainParams is the wallet_addEthereumChain request shape.
type addChainParams struct {
	ChainID        string `json:"chainId"`
	ChainName      string `json:"chainName"`
	NativeCurrency struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	} `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls,omitempty"`
}

func (p *RPCProvider) AddChain(ctx context.Context, def types.ChainDefinition) error {
	params := addChainParams{
		ChainID:           def.HexID(),
		ChainName:         def.Name,
		RPCURLs:           def.RPCURLs,
		BlockExplorerURLs: def.BlockExplorerURLs,
	}
	params.NativeCurrency.Name = def.CurrencyName
	params.NativeCurrency.Symbol = def.CurrencySymbol
	params.NativeCurrency.Decimals = def.CurrencyDecimals

	return p.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", params)
}

func (p *RPCProvider) OnAccountsChanged(fn func([]common.Address)) {
	p.mu.Lock()
	p.accountFns = append(p.accountFns, fn)
	p.mu.Unlock()
	p.ensureWatcher()
}

func (p *RPCProvider) OnChainChanged(fn func(*big.Int)) {
	p.mu.Lock()
	p.chainFns = append(p.chainFns, fn)
	p.mu.Unlock()
	p.ensureWatcher()
}

// ensureWatcher starts the single polling goroutine. One goroutine
// emits all change events, so callbacks never interleave.
func (p *RPCProvider) ensureWatcher() {
	p.watchOnce.Do(func() {
		go p.watch()
	})
}

func (p *RPCProvider) watch() {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.observe()
		}
	}
}

// observe seeds the baseline on the first successful poll without
// emitting; only genuine changes after that produce events.
func (p *RPCProvider) observe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.poll)
	defer cancel()

	accounts, err := p.Accounts(ctx)
	if err == nil {
		if !p.seenAccounts {
			p.seenAccounts = true
			p.lastAccounts = accounts
		} else if !sameAccounts(p.lastAccounts, accounts) {
			p.lastAccounts = accounts
			for _, fn := range p.snapshotAccountFns() {
				fn(accounts)
			}
		}
	}

	chainID, err := p.ChainID(ctx)
	if err == nil && (p.lastChain == nil || p.lastChain.Cmp(chainID) != 0) {
		first := p.lastChain == nil
		p.lastChain = chainID
		if !first {
			for _, fn := range p.snapshotChainFns() {
				fn(chainID)
			}
		}
	}
}

func (p *RPCProvider) snapshotAccountFns() []func([]common.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func([]common.Address){}, p.accountFns...)
}

func (p *RPCProvider) snapshotChainFns() []func(*big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func(*big.Int){}, p.chainFns...)
}

// Close stops the watcher and releases the connection. Safe to call
// more than once, including concurrently.
func (p *RPCProvider) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		if p.rpc != nil {
			p.rpc.Close()
		}
	})
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
