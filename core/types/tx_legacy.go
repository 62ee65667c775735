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
	"fmt"
	"math/big"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/rlp"
)

// LegacyTx is the transaction data of the original transaction format.
type LegacyTx struct {
	Nonce    uint64          // nonce of sender account
	GasPrice *big.Int        // wei per gas
	Gas      uint64          // gas limit
	To       *common.Address `rlp:"nil"` // nil means contract creation
	Value    *big.Int        // wei amount
	Data     []byte          // contract invocation input data
	V, R, S  *big.Int        // signature values
}

// NewTransaction creates an unsigned legacy transaction.
func NewTransaction(nonce uint64, to common.Address, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// NewContractCreation creates an unsigned legacy transaction with no recipient.
func NewContractCreation(nonce uint64, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *LegacyTx) copy() TxData {
	cpy := &LegacyTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are initialized below.
		Value:    new(big.Int),
		GasPrice: new(big.Int),
		V:        new(big.Int),
		R:        new(big.Int),
		S:        new(big.Int),
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
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
func (tx *LegacyTx) txType() byte           { return LegacyTxType }
func (tx *LegacyTx) chainID() *big.Int      { return deriveChainId(tx.V) }
func (tx *LegacyTx) accessList() AccessList { return nil }
func (tx *LegacyTx) data() []byte           { return tx.Data }
func (tx *LegacyTx) gas() uint64            { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) value() *big.Int        { return tx.Value }
func (tx *LegacyTx) nonce() uint64          { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address    { return tx.To }

func (tx *LegacyTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	return dst.Set(tx.GasPrice)
}

func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *LegacyTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.V, tx.R, tx.S = v, r, s
}

func (tx *LegacyTx) encodeCanonical(w rlp.EncoderBuffer) {
	l := w.List()
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	w.WriteBigInt(tx.V)
	w.WriteBigInt(tx.R)
	w.WriteBigInt(tx.S)
	w.ListEnd(l)
}

func (tx *LegacyTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	tx.encodeCanonical(w)
	return w.Flush()
}

func (tx *LegacyTx) decode(input []byte) error {
	s := rlp.NewStream(input)
	if _, err := s.List(); err != nil {
		return err
	}
	var err error
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
	if tx.V, err = s.BigInt(); err != nil {
		return wrapTxFieldError("v", err)
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

// writeTxTo encodes an optional recipient address. A nil recipient, meaning
// contract creation, encodes as the empty string.
func writeTxTo(w rlp.EncoderBuffer, to *common.Address) {
	if to == nil {
		w.Write([]byte{0x80})
		return
	}
	w.WriteBytes(to[:])
}

// decodeTxTo decodes an optional recipient address. The empty string decodes
// as nil, meaning contract creation.
func decodeTxTo(s *rlp.Stream) (*common.Address, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	switch len(b) {
	case 0:
		return nil, nil
	case common.AddressLength:
		addr := common.BytesToAddress(b)
		return &addr, nil
	default:
		return nil, errors.New("rlp: invalid recipient address length")
	}
}

func wrapTxFieldError(field string, err error) error {
	return fmt.Errorf("invalid transaction field %q: %w", field, err)
}
