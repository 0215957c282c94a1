package clients

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces transact opts for contract writes. The injected
// browser wallet signs transparently; here signing is an explicit
// capability supplied by the embedding application.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// KeyedSigner signs with an in-memory secp256k1 private key.
type KeyedSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewKeyedSigner(hexKey string) (*KeyedSigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return &KeyedSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *KeyedSigner) Address() common.Address {
	return s.address
}

func (s *KeyedSigner) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}
