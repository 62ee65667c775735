// Copyright 2023 The go-basalt Authors
// This file is part of the go-basalt library.
//
// The go-basalt library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-basalt library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-basalt library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/basaltchain/go-basalt/params"
)

// TxRegistry maps one-byte transaction type identifiers to payload decoders.
//
// A registry is built once per protocol-version configuration and is read-only
// afterwards, so it may be shared across any number of concurrent readers.
// Later protocol versions extend a copy of an earlier registry and never
// remove or reassign an identifier, keeping historical transactions decodable.
type TxRegistry struct {
	decoders map[byte]func() TxData
}

// NewTxRegistry creates an empty registry. Legacy transactions carry no type
// identifier and are always decodable; only typed payloads need an entry.
func NewTxRegistry() *TxRegistry {
	return &TxRegistry{decoders: make(map[byte]func() TxData)}
}

// Register adds a decoder for the given type identifier. Registering an
// identifier twice, or registering one that could be mistaken for the leading
// byte of a legacy transaction's RLP list, is a configuration error.
func (r *TxRegistry) Register(kind byte, newInner func() TxData) error {
	if kind > 0x7f {
		return fmt.Errorf("transaction type %d is not distinguishable from legacy transactions", kind)
	}
	if _, ok := r.decoders[kind]; ok {
		return fmt.Errorf("transaction type %d already registered", kind)
	}
	r.decoders[kind] = newInner
	return nil
}

// mustRegister is Register for the built-in fork registries, where a failure
// means a programming error.
func (r *TxRegistry) mustRegister(kind byte, newInner func() TxData) {
	if err := r.Register(kind, newInner); err != nil {
		panic(err)
	}
}

// Copy returns a registry with the same entries, which can be extended
// without affecting the original.
func (r *TxRegistry) Copy() *TxRegistry {
	cpy := NewTxRegistry()
	for kind, newInner := range r.decoders {
		cpy.decoders[kind] = newInner
	}
	return cpy
}

// Supported reports whether the given type identifier has a decoder.
// Legacy transactions are always supported.
func (r *TxRegistry) Supported(kind byte) bool {
	if kind == LegacyTxType {
		return true
	}
	_, ok := r.decoders[kind]
	return ok
}

// Types returns the registered type identifiers in ascending order.
func (r *TxRegistry) Types() []byte {
	kinds := make([]byte, 0, len(r.decoders))
	for kind := range r.decoders {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DecodeTx decodes the canonical wire encoding of a transaction. The first
// byte disambiguates: bytes that parse as an RLP list at the top level are a
// legacy transaction, anything else is a type identifier followed by the
// typed payload.
func (r *TxRegistry) DecodeTx(b []byte) (*Transaction, error) {
	inner, err := r.decodeInner(b)
	if err != nil {
		return nil, err
	}
	var tx Transaction
	tx.setDecoded(inner, uint64(len(b)))
	return &tx, nil
}

func (r *TxRegistry) decodeInner(b []byte) (TxData, error) {
	if len(b) == 0 {
		return nil, errShortTypedTx
	}
	if b[0] > 0x7f {
		// It's a legacy transaction.
		data := new(LegacyTx)
		if err := data.decode(b); err != nil {
			return nil, err
		}
		if err := data.validate(); err != nil {
			return nil, err
		}
		return data, nil
	}
	// It's an EIP-2718 typed transaction envelope.
	return r.decodeTyped(b)
}

// decodeTyped decodes a typed transaction from the canonical format.
func (r *TxRegistry) decodeTyped(b []byte) (TxData, error) {
	if len(b) <= 1 {
		return nil, errShortTypedTx
	}
	newInner, ok := r.decoders[b[0]]
	if !ok {
		return nil, fmt.Errorf("%w: type %d", ErrTxTypeNotSupported, b[0])
	}
	inner := newInner()
	if err := inner.decode(b[1:]); err != nil {
		return nil, err
	}
	if err := inner.validate(); err != nil {
		return nil, err
	}
	return inner, nil
}

// NewFrontierTxRegistry returns the registry of the original protocol, which
// supports legacy transactions only.
func NewFrontierTxRegistry() *TxRegistry {
	return NewTxRegistry()
}

// NewBerlinTxRegistry returns the registry of the berlin fork, adding support
// for access list transactions.
func NewBerlinTxRegistry() *TxRegistry {
	r := NewFrontierTxRegistry()
	r.mustRegister(AccessListTxType, func() TxData { return new(AccessListTx) })
	return r
}

// NewLondonTxRegistry returns the registry of the london fork, adding support
// for dynamic fee transactions.
func NewLondonTxRegistry() *TxRegistry {
	r := NewBerlinTxRegistry()
	r.mustRegister(DynamicFeeTxType, func() TxData { return new(DynamicFeeTx) })
	return r
}

// NewCancunTxRegistry returns the registry of the cancun fork, adding support
// for blob transactions.
func NewCancunTxRegistry() *TxRegistry {
	r := NewLondonTxRegistry()
	r.mustRegister(BlobTxType, func() TxData { return new(BlobTx) })
	return r
}

// MakeTxRegistry returns a TxRegistry based on the given chain config and
// block number/time. Use this to decode historical chain data with the exact
// transaction type set that was valid at the time.
func MakeTxRegistry(config *params.ChainConfig, blockNumber *big.Int, blockTime uint64) *TxRegistry {
	switch {
	case config.IsCancun(blockNumber, blockTime):
		return NewCancunTxRegistry()
	case config.IsLondon(blockNumber):
		return NewLondonTxRegistry()
	case config.IsBerlin(blockNumber):
		return NewBerlinTxRegistry()
	default:
		return NewFrontierTxRegistry()
	}
}

// LatestTxRegistry returns the registry of the most recent protocol version
// available in the given chain configuration.
func LatestTxRegistry(config *params.ChainConfig) *TxRegistry {
	if config.CancunTime != nil {
		return NewCancunTxRegistry()
	}
	if config.LondonBlock != nil {
		return NewLondonTxRegistry()
	}
	if config.BerlinBlock != nil {
		return NewBerlinTxRegistry()
	}
	return NewFrontierTxRegistry()
}

// latestRegistry supports all transaction types. It backs UnmarshalBinary,
// which is expected to accept any canonical encoding.
var latestRegistry = NewCancunTxRegistry()

// UnmarshalBinary decodes the canonical encoding of transactions.
// It supports legacy RLP transactions and typed transactions of every known
// kind. Use TxRegistry.DecodeTx to restrict decoding to a protocol version.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	inner, err := latestRegistry.decodeInner(b)
	if err != nil {
		return err
	}
	tx.setDecoded(inner, uint64(len(b)))
	return nil
}
