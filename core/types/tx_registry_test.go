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
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/crypto"
	"github.com/basaltchain/go-basalt/params"
	"github.com/holiman/uint256"
)

func TestRegistryRegister(t *testing.T) {
	r := NewTxRegistry()
	if err := r.Register(0x05, func() TxData { return new(AccessListTx) }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// duplicate registration
	if err := r.Register(0x05, func() TxData { return new(AccessListTx) }); err == nil {
		t.Error("duplicate registration accepted")
	}
	// identifiers above 0x7f collide with the legacy RLP list space
	if err := r.Register(0x80, func() TxData { return new(AccessListTx) }); err == nil {
		t.Error("type 0x80 accepted")
	}
	if err := r.Register(0xff, func() TxData { return new(AccessListTx) }); err == nil {
		t.Error("type 0xff accepted")
	}
	// 0x7f is the last valid identifier
	if err := r.Register(0x7f, func() TxData { return new(AccessListTx) }); err != nil {
		t.Errorf("type 0x7f rejected: %v", err)
	}
}

func TestRegistrySupported(t *testing.T) {
	r := NewBerlinTxRegistry()
	if !r.Supported(LegacyTxType) {
		t.Error("legacy transactions not supported")
	}
	if !r.Supported(AccessListTxType) {
		t.Error("access list transactions not supported in berlin registry")
	}
	if r.Supported(DynamicFeeTxType) {
		t.Error("dynamic fee transactions supported in berlin registry")
	}
	if r.Supported(BlobTxType) {
		t.Error("blob transactions supported in berlin registry")
	}
}

func TestRegistryTypes(t *testing.T) {
	tests := []struct {
		registry *TxRegistry
		want     []byte
	}{
		{NewFrontierTxRegistry(), []byte{}},
		{NewBerlinTxRegistry(), []byte{AccessListTxType}},
		{NewLondonTxRegistry(), []byte{AccessListTxType, DynamicFeeTxType}},
		{NewCancunTxRegistry(), []byte{AccessListTxType, DynamicFeeTxType, BlobTxType}},
	}
	for _, test := range tests {
		got := test.registry.Types()
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Types() = %v, want %v", got, test.want)
		}
	}
}

func TestRegistryCopy(t *testing.T) {
	orig := NewBerlinTxRegistry()
	cpy := orig.Copy()
	if err := cpy.Register(DynamicFeeTxType, func() TxData { return new(DynamicFeeTx) }); err != nil {
		t.Fatal(err)
	}
	if !cpy.Supported(DynamicFeeTxType) {
		t.Error("copy missing registered type")
	}
	if orig.Supported(DynamicFeeTxType) {
		t.Error("registering on the copy affected the original")
	}
}

func TestRegistryDecodeForkGating(t *testing.T) {
	key, _ := crypto.GenerateKey()
	to := crypto.PubkeyToAddress(key.PublicKey)
	tx, err := SignNewTx(key, NewLondonSigner(big.NewInt(1)), &DynamicFeeTx{
		ChainID:   big.NewInt(1),
		To:        &to,
		Gas:       21000,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	enc, err := tx.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	// A registry predating the fee market must reject the encoding.
	if _, err := NewBerlinTxRegistry().DecodeTx(enc); !errors.Is(err, ErrTxTypeNotSupported) {
		t.Errorf("berlin decode error = %v, want %v", err, ErrTxTypeNotSupported)
	}
	// The current registry accepts it.
	decoded, err := NewLondonTxRegistry().DecodeTx(enc)
	if err != nil {
		t.Fatalf("london decode error: %v", err)
	}
	if decoded.Hash() != tx.Hash() {
		t.Errorf("decoded hash mismatch: got %x want %x", decoded.Hash(), tx.Hash())
	}
}

func TestRegistryDecodeLegacy(t *testing.T) {
	// Legacy transactions need no registration, even an empty registry
	// decodes them.
	enc, err := rightvrsTx.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	tx, err := NewFrontierTxRegistry().DecodeTx(enc)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tx.Type() != LegacyTxType {
		t.Errorf("decoded type = %d, want %d", tx.Type(), LegacyTxType)
	}
	if tx.Hash() != rightvrsTx.Hash() {
		t.Errorf("decoded hash mismatch")
	}
}

func TestRegistryDecodeValidates(t *testing.T) {
	// A blob transaction without blob hashes encodes fine but must be
	// rejected when decoded from the wire.
	tx := NewTx(&BlobTx{
		ChainID:    uint256.NewInt(1),
		To:         common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b"),
		Gas:        21000,
		BlobFeeCap: uint256.NewInt(1),
	})
	enc, err := tx.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewCancunTxRegistry().DecodeTx(enc)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "blobVersionedHashes" {
		t.Errorf("offending field = %q, want %q", verr.Field, "blobVersionedHashes")
	}
}

func TestMakeTxRegistry(t *testing.T) {
	config := params.MainnetChainConfig
	tests := []struct {
		number uint64
		time   uint64
		want   []byte
	}{
		{0, 0, []byte{}},
		{12243999, 0, []byte{}},
		{12244000, 0, []byte{AccessListTxType}},
		{12965000, 0, []byte{AccessListTxType, DynamicFeeTxType}},
		{19000000, 1710338135, []byte{AccessListTxType, DynamicFeeTxType, BlobTxType}},
	}
	for _, test := range tests {
		r := MakeTxRegistry(config, new(big.Int).SetUint64(test.number), test.time)
		if got := r.Types(); !reflect.DeepEqual(got, test.want) {
			t.Errorf("MakeTxRegistry(%d, %d).Types() = %v, want %v", test.number, test.time, got, test.want)
		}
	}
}

func TestLatestTxRegistry(t *testing.T) {
	if r := LatestTxRegistry(params.TestChainConfig); !r.Supported(BlobTxType) {
		t.Error("latest registry for test config misses blob transactions")
	}
	preLondon := &params.ChainConfig{
		ChainID:     big.NewInt(5),
		BerlinBlock: big.NewInt(0),
	}
	r := LatestTxRegistry(preLondon)
	if !r.Supported(AccessListTxType) || r.Supported(DynamicFeeTxType) {
		t.Errorf("pre-london registry types = %v", r.Types())
	}
}
