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
	"math/big"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/rlp"
)

// DynamicFeeTx is the data of EIP-1559 dynamic fee transactions.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // a.k.a. maxPriorityFeePerGas
	GasFeeCap  *big.Int // a.k.a. maxFeePerGas
	Gas        uint64
	To         *common.Address `rlp:"nil"` // nil means contract creation
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *DynamicFeeTx) copy() TxData {
	cpy := &DynamicFeeTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		GasTipCap:  new(big.Int),
		GasFeeCap:  new(big.Int),
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
	if tx.GasTipCap != nil {
		cpy.GasTipCap.Set(tx.GasTipCap)
	}
	if tx.GasFeeCap != nil {
		cpy.GasFeeCap.Set(tx.GasFeeCap)
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
func (tx *DynamicFeeTx) txType() byte           { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *big.Int      { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte           { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64            { return tx.Gas }
func (tx *DynamicFeeTx) gasFeeCap() *big.Int    { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *big.Int    { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasPrice() *big.Int     { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *big.Int        { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64          { return tx.Nonce }
func (tx *DynamicFeeTx) to() *common.Address    { return tx.To }

func (tx *DynamicFeeTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return dst.Set(tx.GasFeeCap)
	}
	tip := dst.Sub(tx.GasFeeCap, baseFee)
	if tip.Cmp(tx.GasTipCap) > 0 {
		tip.Set(tx.GasTipCap)
	}
	return tip.Add(tip, baseFee)
}

func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *DynamicFeeTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *DynamicFeeTx) encodeCanonical(w rlp.EncoderBuffer) {
	l := w.List()
	w.WriteBigInt(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasTipCap)
	w.WriteBigInt(tx.GasFeeCap)
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

func (tx *DynamicFeeTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	tx.encodeCanonical(w)
	return w.Flush()
}

func (tx *DynamicFeeTx) decode(input []byte) error {
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
	if tx.GasTipCap, err = s.BigInt(); err != nil {
		return wrapTxFieldError("maxPriorityFeePerGas", err)
	}
	if tx.GasFeeCap, err = s.BigInt(); err != nil {
		return wrapTxFieldError("maxFeePerGas", err)
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
