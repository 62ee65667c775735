// Copyright 2024 The go-basalt Authors
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
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/crypto/kzg4844"
	"github.com/basaltchain/go-basalt/params"
	"github.com/basaltchain/go-basalt/rlp"
	"github.com/holiman/uint256"
)

// BlobTx represents an EIP-4844 transaction.
type BlobTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasTipCap  *uint256.Int // a.k.a. maxPriorityFeePerGas
	GasFeeCap  *uint256.Int // a.k.a. maxFeePerGas
	Gas        uint64
	To         common.Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *uint256.Int // a.k.a. maxFeePerBlobGas
	BlobHashes []common.Hash

	// A blob transaction can optionally contain blobs. This field must be set
	// when BlobTx is used to create a transaction for signing.
	Sidecar *BlobTxSidecar `rlp:"-"`

	// Signature values
	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// BlobTxSidecar contains the blobs of a blob transaction.
type BlobTxSidecar struct {
	Blobs       []kzg4844.Blob       // Blobs needed by the blob pool
	Commitments []kzg4844.Commitment // Commitments needed by the blob pool
	Proofs      []kzg4844.Proof      // Proofs needed by the blob pool
}

// BlobHashes computes the blob hashes of the given blobs.
func (sc *BlobTxSidecar) BlobHashes() []common.Hash {
	hasher := sha256.New()
	h := make([]common.Hash, len(sc.Commitments))
	for i := range sc.Blobs {
		h[i] = kzg4844.CalcBlobHashV1(hasher, &sc.Commitments[i])
	}
	return h
}

// encodedSize computes the RLP size of the sidecar elements. This does NOT return the
// encoded size of the BlobTxSidecar, it's just a helper for tx.Size().
func (sc *BlobTxSidecar) encodedSize() uint64 {
	var blobs, commitments, proofs uint64
	for i := range sc.Blobs {
		blobs += rlp.BytesSize(sc.Blobs[i][:])
	}
	for i := range sc.Commitments {
		commitments += rlp.BytesSize(sc.Commitments[i][:])
	}
	for i := range sc.Proofs {
		proofs += rlp.BytesSize(sc.Proofs[i][:])
	}
	return rlp.ListSize(blobs) + rlp.ListSize(commitments) + rlp.ListSize(proofs)
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *BlobTx) copy() TxData {
	cpy := &BlobTx{
		Nonce: tx.Nonce,
		To:    tx.To,
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		BlobHashes: make([]common.Hash, len(tx.BlobHashes)),
		Value:      new(uint256.Int),
		ChainID:    new(uint256.Int),
		GasTipCap:  new(uint256.Int),
		GasFeeCap:  new(uint256.Int),
		BlobFeeCap: new(uint256.Int),
		V:          new(uint256.Int),
		R:          new(uint256.Int),
		S:          new(uint256.Int),
	}
	copy(cpy.AccessList, tx.AccessList)
	copy(cpy.BlobHashes, tx.BlobHashes)

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
	if tx.BlobFeeCap != nil {
		cpy.BlobFeeCap.Set(tx.BlobFeeCap)
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
	if tx.Sidecar != nil {
		cpy.Sidecar = &BlobTxSidecar{
			Blobs:       append([]kzg4844.Blob(nil), tx.Sidecar.Blobs...),
			Commitments: append([]kzg4844.Commitment(nil), tx.Sidecar.Commitments...),
			Proofs:      append([]kzg4844.Proof(nil), tx.Sidecar.Proofs...),
		}
	}
	return cpy
}

// accessors for innerTx.
func (tx *BlobTx) txType() byte           { return BlobTxType }
func (tx *BlobTx) chainID() *big.Int      { return tx.ChainID.ToBig() }
func (tx *BlobTx) accessList() AccessList { return tx.AccessList }
func (tx *BlobTx) data() []byte           { return tx.Data }
func (tx *BlobTx) gas() uint64            { return tx.Gas }
func (tx *BlobTx) gasFeeCap() *big.Int    { return tx.GasFeeCap.ToBig() }
func (tx *BlobTx) gasTipCap() *big.Int    { return tx.GasTipCap.ToBig() }
func (tx *BlobTx) gasPrice() *big.Int     { return tx.GasFeeCap.ToBig() }
func (tx *BlobTx) value() *big.Int        { return tx.Value.ToBig() }
func (tx *BlobTx) nonce() uint64          { return tx.Nonce }
func (tx *BlobTx) to() *common.Address    { tmp := tx.To; return &tmp }

func (tx *BlobTx) blobGas() uint64 { return params.BlobTxBlobGasPerBlob * uint64(len(tx.BlobHashes)) }

func (tx *BlobTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return dst.Set(tx.GasFeeCap.ToBig())
	}
	tip := dst.Sub(tx.GasFeeCap.ToBig(), baseFee)
	if tip.Cmp(tx.GasTipCap.ToBig()) > 0 {
		tip.Set(tx.GasTipCap.ToBig())
	}
	return tip.Add(tip, baseFee)
}

func (tx *BlobTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V.ToBig(), tx.R.ToBig(), tx.S.ToBig()
}

func (tx *BlobTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID = uint256.MustFromBig(chainID)
	tx.V = uint256.MustFromBig(v)
	tx.R = uint256.MustFromBig(r)
	tx.S = uint256.MustFromBig(s)
}

func (tx *BlobTx) withoutSidecar() *BlobTx {
	cpy := *tx
	cpy.Sidecar = nil
	return &cpy
}

func (tx *BlobTx) withSidecar(sideCar *BlobTxSidecar) *BlobTx {
	cpy := *tx
	cpy.Sidecar = sideCar
	return &cpy
}

func (tx *BlobTx) encodeCanonical(w rlp.EncoderBuffer) {
	l := w.List()
	tx.encodeFields(w)
	w.ListEnd(l)
}

// encodeFields writes the consensus fields without the enclosing list header.
func (tx *BlobTx) encodeFields(w rlp.EncoderBuffer) {
	w.WriteUint256(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteUint256(tx.GasTipCap)
	w.WriteUint256(tx.GasFeeCap)
	w.WriteUint64(tx.Gas)
	w.WriteBytes(tx.To[:])
	w.WriteUint256(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.WriteUint256(tx.BlobFeeCap)
	hashes := w.List()
	for _, h := range tx.BlobHashes {
		w.WriteBytes(h[:])
	}
	w.ListEnd(hashes)
	w.WriteUint256(tx.V)
	w.WriteUint256(tx.R)
	w.WriteUint256(tx.S)
}

func (tx *BlobTx) encode(b *bytes.Buffer) error {
	if tx.Sidecar == nil {
		w := rlp.NewEncoderBuffer(b)
		tx.encodeCanonical(w)
		return w.Flush()
	}
	// The network wire form wraps the canonical fields together with the
	// blobs, commitments and proofs in an outer list.
	w := rlp.NewEncoderBuffer(b)
	outer := w.List()

	inner := w.List()
	tx.encodeFields(w)
	w.ListEnd(inner)

	blobs := w.List()
	for i := range tx.Sidecar.Blobs {
		w.WriteBytes(tx.Sidecar.Blobs[i][:])
	}
	w.ListEnd(blobs)

	commitments := w.List()
	for i := range tx.Sidecar.Commitments {
		w.WriteBytes(tx.Sidecar.Commitments[i][:])
	}
	w.ListEnd(commitments)

	proofs := w.List()
	for i := range tx.Sidecar.Proofs {
		w.WriteBytes(tx.Sidecar.Proofs[i][:])
	}
	w.ListEnd(proofs)

	w.ListEnd(outer)
	return w.Flush()
}

func (tx *BlobTx) decode(input []byte) error {
	s := rlp.NewStream(input)
	if _, err := s.List(); err != nil {
		return err
	}
	// Here we need to support two formats: the network protocol encoding of the
	// tx (with blobs) or the canonical encoding without blobs. The two formats
	// can be distinguished by checking the first element of the outer list: in
	// the canonical encoding it is a byte string (the chain id), in the network
	// encoding it is the list of canonical fields.
	kind, _, err := s.Kind()
	if err != nil {
		return err
	}
	if kind != rlp.List {
		if err := tx.decodeFields(s); err != nil {
			return err
		}
		if err := s.ListEnd(); err != nil {
			return err
		}
		return s.Done()
	}
	// It's a tx with blobs.
	if _, err := s.List(); err != nil {
		return err
	}
	if err := tx.decodeFields(s); err != nil {
		return err
	}
	if err := s.ListEnd(); err != nil {
		return err
	}
	sc := new(BlobTxSidecar)
	if sc.Blobs, err = decodeBlobList(s, func(b *kzg4844.Blob) []byte { return b[:] }); err != nil {
		return wrapTxFieldError("blobs", err)
	}
	if sc.Commitments, err = decodeBlobList(s, func(c *kzg4844.Commitment) []byte { return c[:] }); err != nil {
		return wrapTxFieldError("commitments", err)
	}
	if sc.Proofs, err = decodeBlobList(s, func(p *kzg4844.Proof) []byte { return p[:] }); err != nil {
		return wrapTxFieldError("proofs", err)
	}
	tx.Sidecar = sc
	if err := s.ListEnd(); err != nil {
		return err
	}
	return s.Done()
}

// decodeFields reads the canonical fields from the current list.
func (tx *BlobTx) decodeFields(s *rlp.Stream) error {
	var err error
	tx.ChainID = new(uint256.Int)
	if err = s.ReadUint256(tx.ChainID); err != nil {
		return wrapTxFieldError("chainId", err)
	}
	if tx.Nonce, err = s.Uint64(); err != nil {
		return wrapTxFieldError("nonce", err)
	}
	tx.GasTipCap = new(uint256.Int)
	if err = s.ReadUint256(tx.GasTipCap); err != nil {
		return wrapTxFieldError("maxPriorityFeePerGas", err)
	}
	tx.GasFeeCap = new(uint256.Int)
	if err = s.ReadUint256(tx.GasFeeCap); err != nil {
		return wrapTxFieldError("maxFeePerGas", err)
	}
	if tx.Gas, err = s.Uint64(); err != nil {
		return wrapTxFieldError("gas", err)
	}
	if err = s.ReadBytes(tx.To[:]); err != nil {
		return wrapTxFieldError("to", err)
	}
	tx.Value = new(uint256.Int)
	if err = s.ReadUint256(tx.Value); err != nil {
		return wrapTxFieldError("value", err)
	}
	if tx.Data, err = s.Bytes(); err != nil {
		return wrapTxFieldError("input", err)
	}
	if tx.AccessList, err = decodeAccessList(s); err != nil {
		return wrapTxFieldError("accessList", err)
	}
	tx.BlobFeeCap = new(uint256.Int)
	if err = s.ReadUint256(tx.BlobFeeCap); err != nil {
		return wrapTxFieldError("maxFeePerBlobGas", err)
	}
	if tx.BlobHashes, err = decodeHashList(s); err != nil {
		return wrapTxFieldError("blobVersionedHashes", err)
	}
	tx.V = new(uint256.Int)
	if err = s.ReadUint256(tx.V); err != nil {
		return wrapTxFieldError("yParity", err)
	}
	tx.R = new(uint256.Int)
	if err = s.ReadUint256(tx.R); err != nil {
		return wrapTxFieldError("r", err)
	}
	tx.S = new(uint256.Int)
	if err = s.ReadUint256(tx.S); err != nil {
		return wrapTxFieldError("s", err)
	}
	return nil
}

// decodeHashList decodes a list of 32-byte hashes.
func decodeHashList(s *rlp.Stream) ([]common.Hash, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	hashes := []common.Hash{}
	for s.MoreDataInList() {
		var h common.Hash
		if err := s.ReadBytes(h[:]); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// decodeBlobList decodes a list of fixed-size byte arrays.
func decodeBlobList[T any](s *rlp.Stream, content func(*T) []byte) ([]T, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	var elems []T
	for s.MoreDataInList() {
		var elem T
		if err := s.ReadBytes(content(&elem)); err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return elems, nil
}

// ValidateBlobTxSidecar checks that the sidecar matches the versioned hashes of
// the transaction and that the KZG proofs verify against the blob data.
func ValidateBlobTxSidecar(hashes []common.Hash, sidecar *BlobTxSidecar) error {
	if len(sidecar.Blobs) != len(hashes) {
		return fmt.Errorf("invalid number of %d blobs compared to %d blob hashes", len(sidecar.Blobs), len(hashes))
	}
	if len(sidecar.Commitments) != len(hashes) {
		return fmt.Errorf("invalid number of %d blob commitments compared to %d blob hashes", len(sidecar.Commitments), len(hashes))
	}
	if len(sidecar.Proofs) != len(hashes) {
		return fmt.Errorf("invalid number of %d blob proofs compared to %d blob hashes", len(sidecar.Proofs), len(hashes))
	}
	// Blob commitments match with the hashes in the transaction.
	hasher := sha256.New()
	for i, vhash := range hashes {
		computed := kzg4844.CalcBlobHashV1(hasher, &sidecar.Commitments[i])
		if vhash != computed {
			return fmt.Errorf("blob %d: computed hash %#x mismatches transaction one %#x", i, computed, vhash)
		}
	}
	// Blob proofs match with the commitments.
	for i := range sidecar.Blobs {
		if err := kzg4844.VerifyBlobProof(&sidecar.Blobs[i], sidecar.Commitments[i], sidecar.Proofs[i]); err != nil {
			return fmt.Errorf("invalid blob %d: %v", i, err)
		}
	}
	return nil
}
