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
	"github.com/basaltchain/go-basalt/crypto"
	"github.com/basaltchain/go-basalt/params"
	"github.com/basaltchain/go-basalt/rlp"
)

var (
	receiptStatusFailedRLP     = []byte{}
	receiptStatusSuccessfulRLP = []byte{0x01}

	errShortTypedReceipt = errors.New("typed receipt too short")
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the results of a transaction.
type Receipt struct {
	// Consensus fields: These fields are defined by the Yellow Paper
	Type              uint8
	PostState         []byte
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	// Implementation fields: These fields are added by basalt when processing a transaction.
	TxHash            common.Hash
	ContractAddress   common.Address
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	BlobGasUsed       uint64
	BlobGasPrice      *big.Int

	// Inclusion information: These fields provide information about the inclusion of the
	// transaction corresponding to this receipt.
	BlockHash        common.Hash
	BlockNumber      *big.Int
	TransactionIndex uint
}

// NewReceipt creates a barebone transaction receipt, copying the init fields.
func NewReceipt(root []byte, failed bool, cumulativeGasUsed uint64) *Receipt {
	r := &Receipt{
		Type:              LegacyTxType,
		PostState:         common.CopyBytes(root),
		CumulativeGasUsed: cumulativeGasUsed,
	}
	if failed {
		r.Status = ReceiptStatusFailed
	} else {
		r.Status = ReceiptStatusSuccessful
	}
	return r
}

// MakeReceipt builds the receipt of an executed transaction, wrapping it with
// the transaction's type identifier so a stored receipt can later be decoded
// with the matching schema.
func (tx *Transaction) MakeReceipt(status uint64, gasUsed uint64, logs []*Log) *Receipt {
	r := &Receipt{
		Type:              tx.Type(),
		Status:            status,
		CumulativeGasUsed: gasUsed,
		GasUsed:           gasUsed,
		Logs:              logs,
		TxHash:            tx.Hash(),
	}
	r.Bloom = CreateBloom(Receipts{r})
	return r
}

// statusEncoding encodes the post-transaction state, either the explicit
// success/failure status byte or the pre-Byzantium state root.
func (r *Receipt) statusEncoding() ([]byte, error) {
	if len(r.PostState) == 0 {
		if r.Status == ReceiptStatusFailed {
			return receiptStatusFailedRLP, nil
		}
		return receiptStatusSuccessfulRLP, nil
	}
	if len(r.PostState) != len(common.Hash{}) {
		return nil, fmt.Errorf("invalid receipt state root length %d", len(r.PostState))
	}
	return r.PostState, nil
}

func (r *Receipt) setStatus(postStateOrStatus []byte) error {
	switch {
	case bytes.Equal(postStateOrStatus, receiptStatusSuccessfulRLP):
		r.Status = ReceiptStatusSuccessful
	case bytes.Equal(postStateOrStatus, receiptStatusFailedRLP):
		r.Status = ReceiptStatusFailed
	case len(postStateOrStatus) == len(common.Hash{}):
		r.PostState = postStateOrStatus
	default:
		return fmt.Errorf("invalid receipt status %x", postStateOrStatus)
	}
	return nil
}

// encodeConsensus writes the consensus fields of the receipt, without the
// type byte prefix.
func (r *Receipt) encodeConsensus(w rlp.EncoderBuffer) error {
	status, err := r.statusEncoding()
	if err != nil {
		return err
	}
	list := w.List()
	w.WriteBytes(status)
	w.WriteUint64(r.CumulativeGasUsed)
	w.WriteBytes(r.Bloom[:])
	writeLogs(w, r.Logs)
	w.ListEnd(list)
	return nil
}

// MarshalBinary returns the canonical consensus encoding of the receipt.
// For legacy receipts, it returns the RLP encoding. For typed receipts, it
// returns the type byte followed by the receipt payload.
func (r *Receipt) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if r.Type != LegacyTxType {
		if !supportedReceiptType(r.Type) {
			return nil, ErrTxTypeNotSupported
		}
		buf.WriteByte(r.Type)
	}
	w := rlp.NewEncoderBuffer(&buf)
	if err := r.encodeConsensus(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the canonical consensus encoding of receipts.
// It supports legacy RLP receipts and typed receipts of every known kind.
func (r *Receipt) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return errShortTypedReceipt
	}
	if b[0] > 0x7f {
		// It's a legacy receipt.
		r.Type = LegacyTxType
		return r.decodeConsensus(b)
	}
	// It's an EIP-2718 typed receipt.
	if len(b) <= 1 {
		return errShortTypedReceipt
	}
	if !supportedReceiptType(b[0]) {
		return fmt.Errorf("%w: type %d", ErrTxTypeNotSupported, b[0])
	}
	r.Type = b[0]
	return r.decodeConsensus(b[1:])
}

func (r *Receipt) decodeConsensus(input []byte) error {
	s := rlp.NewStream(input)
	if _, err := s.List(); err != nil {
		return err
	}
	status, err := s.Bytes()
	if err != nil {
		return err
	}
	if err := r.setStatus(status); err != nil {
		return err
	}
	if r.CumulativeGasUsed, err = s.Uint64(); err != nil {
		return err
	}
	var bloom []byte
	if bloom, err = s.Bytes(); err != nil {
		return err
	}
	if len(bloom) != BloomByteLength {
		return fmt.Errorf("invalid receipt bloom length %d", len(bloom))
	}
	copy(r.Bloom[:], bloom)
	if r.Logs, err = decodeLogs(s); err != nil {
		return err
	}
	if err := s.ListEnd(); err != nil {
		return err
	}
	return s.Done()
}

// supportedReceiptType reports whether the given identifier names a known
// typed receipt schema. Receipt typing mirrors transaction typing.
func supportedReceiptType(kind byte) bool {
	return latestRegistry.Supported(kind)
}

// Receipts implements DerivableList for receipts.
type Receipts []*Receipt

// Len returns the number of receipts in this list.
func (rs Receipts) Len() int { return len(rs) }

// EncodeIndex encodes the i'th receipt to w.
func (rs Receipts) EncodeIndex(i int, w *bytes.Buffer) {
	r := rs[i]
	if r.Type != LegacyTxType {
		w.WriteByte(r.Type)
	}
	eb := rlp.NewEncoderBuffer(w)
	r.encodeConsensus(eb)
	eb.Flush()
}

// DeriveFields fills the receipts with their computed fields based on consensus
// data and contextual infos like containing block and transactions.
func (rs Receipts) DeriveFields(config *params.ChainConfig, hash common.Hash, number uint64, time uint64, baseFee *big.Int, blobGasPrice *big.Int, txs []*Transaction) error {
	signer := MakeSigner(config, new(big.Int).SetUint64(number), time)

	logIndex := uint(0)
	if len(txs) != len(rs) {
		return errors.New("transaction and receipt count mismatch")
	}
	for i := 0; i < len(rs); i++ {
		// The transaction type and hash can be retrieved from the transaction itself
		rs[i].Type = txs[i].Type()
		rs[i].TxHash = txs[i].Hash()
		rs[i].EffectiveGasPrice = txs[i].inner.effectiveGasPrice(new(big.Int), baseFee)

		// EIP-4844 blob transaction fields
		if txs[i].Type() == BlobTxType {
			rs[i].BlobGasUsed = txs[i].BlobGas()
			rs[i].BlobGasPrice = blobGasPrice
		}

		// block location fields
		rs[i].BlockHash = hash
		rs[i].BlockNumber = new(big.Int).SetUint64(number)
		rs[i].TransactionIndex = uint(i)

		// The contract address can be derived from the transaction itself
		if txs[i].To() == nil {
			// Deriving the signer is expensive, only do if it's actually needed
			from, _ := Sender(signer, txs[i])
			rs[i].ContractAddress = crypto.CreateAddress(from, txs[i].Nonce())
		} else {
			rs[i].ContractAddress = common.Address{}
		}

		// The used gas can be calculated based on previous receipts
		if i == 0 {
			rs[i].GasUsed = rs[i].CumulativeGasUsed
		} else {
			rs[i].GasUsed = rs[i].CumulativeGasUsed - rs[i-1].CumulativeGasUsed
		}

		// The derived log fields can simply be set from the block and transaction
		for j := 0; j < len(rs[i].Logs); j++ {
			rs[i].Logs[j].BlockNumber = number
			rs[i].Logs[j].BlockHash = hash
			rs[i].Logs[j].TxHash = rs[i].TxHash
			rs[i].Logs[j].TxIndex = uint(i)
			rs[i].Logs[j].Index = logIndex
			logIndex++
		}
	}
	return nil
}
