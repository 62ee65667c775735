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
	"bytes"
	"errors"
	"math/big"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/rlp"
)

// AccessList is an EIP-2930 access list.
type AccessList []AccessTuple

// AccessTuple is the element type of an access list.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

// writeAccessList encodes an access list as a list of (address, storage keys) tuples.
func writeAccessList(w rlp.EncoderBuffer, al AccessList) {
	outer := w.List()
	for _, tuple := range al {
		inner := w.List()
		w.WriteBytes(tuple.Address[:])
		keys := w.List()
		for _, key := range tuple.StorageKeys {
			w.WriteBytes(key[:])
		}
		w.ListEnd(keys)
		w.ListEnd(inner)
	}
	w.ListEnd(outer)
}

// decodeAccessList decodes a list of (address, storage keys) tuples.
func decodeAccessList(s *rlp.Stream) (AccessList, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	al := AccessList{}
	for s.MoreDataInList() {
		var tuple AccessTuple
		if _, err := s.List(); err != nil {
			return nil, err
		}
		addr, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		if len(addr) != common.AddressLength {
			return nil, errors.New("rlp: invalid access list address length")
		}
		tuple.Address = common.BytesToAddress(addr)
		if _, err := s.List(); err != nil {
			return nil, err
		}
		tuple.StorageKeys = []common.Hash{}
		for s.MoreDataInList() {
			var key common.Hash
			if err := s.ReadBytes(key[:]); err != nil {
				return nil, err
			}
			tuple.StorageKeys = append(tuple.StorageKeys, key)
		}
		if err := s.ListEnd(); err != nil {
			return nil, err
		}
		if err := s.ListEnd(); err != nil {
			return nil, err
		}
		al = append(al, tuple)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return al, nil
}

// AccessListTx is the data of EIP-2930 access list transactions.
type AccessListTx struct {
	ChainID    *big.Int        // destination chain ID
	Nonce      uint64          // nonce of sender account
	GasPrice   *big.Int        // wei per gas
	Gas        uint64          // gas limit
	To         *common.Address `rlp:"nil"` // nil means contract creation
	Value      *big.Int        // wei amount
	Data       []byte          // contract invocation input data
	AccessList AccessList      // EIP-2930 access list
	V, R, S    *big.Int        // signature values
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *AccessListTx) copy() TxData {
	cpy := &AccessListTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		GasPrice:   new(big.Int),
		V:          new(big.Int),
		R:          new(big.Int),
		S:          new(big.Int),
	}
	copy(cpy.AccessList, tx.AccessList)
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.V != nil {
		cpy.V.Set(tx.V)
	}
	if tx.R != nil {
		cpy.R.Set(tx.R)
	}
	if tx.S != nil {
		cpy.S.Set(tx.S)
	}
	return cpy
}

// accessors for innerTx.
func (tx *AccessListTx) txType() byte           { return AccessListTxType }
func (tx *AccessListTx) chainID() *big.Int      { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList { return tx.AccessList }
func (tx *AccessListTx) data() []byte           { return tx.Data }
func (tx *AccessListTx) gas() uint64            { return tx.Gas }
func (tx *AccessListTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) value() *big.Int        { return tx.Value }
func (tx *AccessListTx) nonce() uint64          { return tx.Nonce }
func (tx *AccessListTx) to() *common.Address    { return tx.To }

func (tx *AccessListTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	return dst.Set(tx.GasPrice)
}

func (tx *AccessListTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *AccessListTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *AccessListTx) encodeCanonical(w rlp.EncoderBuffer) {
	l := w.List()
	w.WriteBigInt(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.WriteBigInt(tx.V)
	w.WriteBigInt(tx.R)
	w.WriteBigInt(tx.S)
	w.ListEnd(l)
}

func (tx *AccessListTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	tx.encodeCanonical(w)
	return w.Flush()
}

func (tx *AccessListTx) decode(input []byte) error {
	s := rlp.NewStream(input)
	if _, err := s.List(); err != nil {
		return err
	}
	var err error
	if tx.ChainID, err = s.BigInt(); err != nil {
		return wrapTxFieldError("chainId", err)
	}
	if tx.Nonce, err = s.Uint64(); err != nil {
		return wrapTxFieldError("nonce", err)
	}
	if tx.GasPrice, err = s.BigInt(); err != nil {
		return wrapTxFieldError("gasPrice", err)
	}
	if tx.Gas, err = s.Uint64(); err != nil {
		return wrapTxFieldError("gas", err)
	}
	if tx.To, err = decodeTxTo(s); err != nil {
		return wrapTxFieldError("to", err)
	}
	if tx.Value, err = s.BigInt(); err != nil {
		return wrapTxFieldError("value", err)
	}
	if tx.Data, err = s.Bytes(); err != nil {
		return wrapTxFieldError("input", err)
	}
	if tx.AccessList, err = decodeAccessList(s); err != nil {
		return wrapTxFieldError("accessList", err)
	}
	if tx.V, err = s.BigInt(); err != nil {
		return wrapTxFieldError("yParity", err)
	}
	if tx.R, err = s.BigInt(); err != nil {
		return wrapTxFieldError("r", err)
	}
	if tx.S, err = s.BigInt(); err != nil {
		return wrapTxFieldError("s", err)
	}
	if err := s.ListEnd(); err != nil {
		return err
	}
	return s.Done()
}
