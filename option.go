package tokenbay

import (
	"net/http"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/tokenbay/tokenbay/clients"
	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/metrics"
	"github.com/tokenbay/tokenbay/txexec"
)

type Option func(*Market)

func WithLogger(l logger.Logger) Option {
	return func(m *Market) {
		m.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Market) {
		m.rec = r
	}
}

// WithProvider injects a wallet provider, replacing the RPC-dialed
// default. Tests use this with a fake.
func WithProvider(p clients.Provider) Option {
	return func(m *Market) {
		m.provider = p
	}
}

func WithSigner(s clients.Signer) Option {
	return func(m *Market) {
		m.signer = s
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(m *Market) {
		m.http = c
	}
}

// WithContractBackend overrides the backend used for contract calls.
func WithContractBackend(b bind.ContractBackend) Option {
	return func(m *Market) {
		m.backend = b
	}
}

// WithReceiptSource overrides where transaction confirmations are
// observed.
func WithReceiptSource(r txexec.ReceiptSource) Option {
	return func(m *Market) {
		m.receipts = r
	}
}
