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
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/crypto"
	"github.com/basaltchain/go-basalt/crypto/kzg4844"
	"github.com/basaltchain/go-basalt/rlp"
	"github.com/holiman/uint256"
)

// The values in these tests are from the Transaction Tests
// at github.com/ethereum/tests.
var (
	testAddr = common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")

	emptyTx = NewTransaction(
		0,
		common.HexToAddress("095e7baea6a6c7c4c2dfeb977efac326af552d87"),
		big.NewInt(0), 0, big.NewInt(0),
		nil,
	)

	rightvrsTx, _ = NewTransaction(
		3,
		testAddr,
		big.NewInt(10),
		2000,
		big.NewInt(1),
		common.FromHex("5544"),
	).WithSignature(
		HomesteadSigner{},
		common.Hex2Bytes("98ff921201554726367d2be8c804a7ff89ccf285ebc57dff8ae4c44b9c19ac4a8887321be575c8095f789dd4c743dfe42c1820f9231f98a962b210e3ac2452a301"),
	)
)

func TestTransactionSigHash(t *testing.T) {
	var homestead HomesteadSigner
	if homestead.Hash(emptyTx) != common.HexToHash("c775b99e7ad12f50d819fcd602390467e28141316969f4b57f0626f74fe3b386") {
		t.Errorf("empty transaction hash mismatch, got %x", homestead.Hash(emptyTx))
	}
	if homestead.Hash(rightvrsTx) != common.HexToHash("fe7a79529ed5f7c3375d06b26b186a8644e0e16c373d7a12be41c62d6042b77a") {
		t.Errorf("RightVRS transaction hash mismatch, got %x", homestead.Hash(rightvrsTx))
	}
}

func TestTransactionEncode(t *testing.T) {
	txb, err := rightvrsTx.MarshalBinary()
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	should := common.FromHex("f86103018207d094b94f5374fce5edbc8e2a8697c15331677e6ebf0b0a8255441ca098ff921201554726367d2be8c804a7ff89ccf285ebc57dff8ae4c44b9c19ac4aa08887321be575c8095f789dd4c743dfe42c1820f9231f98a962b210e3ac2452a3")
	if !bytes.Equal(txb, should) {
		t.Errorf("encoded RLP mismatch, got %x", txb)
	}

	// EncodeRLP output matches MarshalBinary for legacy transactions.
	var buf bytes.Buffer
	if err := rightvrsTx.EncodeRLP(&buf); err != nil {
		t.Fatalf("EncodeRLP error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), should) {
		t.Errorf("EncodeRLP mismatch, got %x", buf.Bytes())
	}
}

func TestTransactionDecode(t *testing.T) {
	enc, _ := rightvrsTx.MarshalBinary()
	var tx Transaction
	if err := tx.UnmarshalBinary(enc); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tx.Hash() != rightvrsTx.Hash() {
		t.Errorf("decoded hash mismatch: got %x want %x", tx.Hash(), rightvrsTx.Hash())
	}
	if tx.Gas() != 2000 || tx.Nonce() != 3 {
		t.Errorf("decoded fields mismatch: gas %d nonce %d", tx.Gas(), tx.Nonce())
	}
	if tx.To() == nil || *tx.To() != testAddr {
		t.Errorf("decoded to mismatch: %v", tx.To())
	}
}

func TestShortTypedTxDecode(t *testing.T) {
	var tx Transaction
	if err := tx.UnmarshalBinary([]byte{}); err != errShortTypedTx {
		t.Errorf("empty input: got %v, want %v", err, errShortTypedTx)
	}
	if err := tx.UnmarshalBinary([]byte{AccessListTxType}); err != errShortTypedTx {
		t.Errorf("type byte only: got %v, want %v", err, errShortTypedTx)
	}
}

func TestLegacyDecodeFieldError(t *testing.T) {
	// 9-element list with a non-canonical gasPrice (leading zero byte).
	enc := common.FromHex("cb8082000180808080808080")
	var tx Transaction
	err := tx.UnmarshalBinary(enc)
	if !errors.Is(err, rlp.ErrCanonInt) {
		t.Fatalf("got %v, want %v", err, rlp.ErrCanonInt)
	}
	if !strings.Contains(err.Error(), `"gasPrice"`) {
		t.Errorf("error does not name the offending field: %v", err)
	}
}

func TestUnsupportedTypeDecode(t *testing.T) {
	var tx Transaction
	err := tx.UnmarshalBinary([]byte{0x7f, 0xc0})
	if !errors.Is(err, ErrTxTypeNotSupported) {
		t.Errorf("got %v, want %v", err, ErrTxTypeNotSupported)
	}
}

func signTestTx(t *testing.T, signer Signer, txdata TxData) (*Transaction, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	tx, err := SignNewTx(key, signer, txdata)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	return tx, key
}

func TestTypedTxRoundTrip(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	accesses := AccessList{{
		Address:     to,
		StorageKeys: []common.Hash{{0}, {2}},
	}}
	signer := LatestSignerForChainID(big.NewInt(1))

	tests := []struct {
		name   string
		txdata TxData
	}{
		{"accesslist", &AccessListTx{
			ChainID:    big.NewInt(1),
			Nonce:      3,
			To:         &to,
			Value:      big.NewInt(10),
			Gas:        25000,
			GasPrice:   big.NewInt(1),
			AccessList: accesses,
			Data:       common.FromHex("5544"),
		}},
		{"dynamicfee", &DynamicFeeTx{
			ChainID:    big.NewInt(1),
			Nonce:      5,
			To:         &to,
			Value:      big.NewInt(10),
			Gas:        30000,
			GasTipCap:  big.NewInt(2),
			GasFeeCap:  big.NewInt(50),
			AccessList: accesses,
			Data:       common.FromHex("1122"),
		}},
		{"dynamicfee-create", &DynamicFeeTx{
			ChainID:   big.NewInt(1),
			Nonce:     0,
			To:        nil,
			Value:     big.NewInt(0),
			Gas:       100000,
			GasTipCap: big.NewInt(1),
			GasFeeCap: big.NewInt(10),
			Data:      common.FromHex("6080604052"),
		}},
		{"blob", &BlobTx{
			ChainID:    uint256.NewInt(1),
			Nonce:      7,
			To:         to,
			Value:      uint256.NewInt(10),
			Gas:        21000,
			GasTipCap:  uint256.NewInt(2),
			GasFeeCap:  uint256.NewInt(50),
			BlobFeeCap: uint256.NewInt(100),
			BlobHashes: []common.Hash{{0x01}},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx, key := signTestTx(t, signer, test.txdata)

			enc, err := tx.MarshalBinary()
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			if enc[0] != tx.Type() {
				t.Fatalf("wire prefix = %#x, want %#x", enc[0], tx.Type())
			}

			var parsed Transaction
			if err := parsed.UnmarshalBinary(enc); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if parsed.Hash() != tx.Hash() {
				t.Errorf("decoded hash mismatch: got %x want %x", parsed.Hash(), tx.Hash())
			}
			// Re-encoding must be byte identical.
			enc2, err := parsed.MarshalBinary()
			if err != nil {
				t.Fatalf("re-encode error: %v", err)
			}
			if !bytes.Equal(enc, enc2) {
				t.Errorf("re-encoding differs:\n  first:  %x\n  second: %x", enc, enc2)
			}
			// The sender must survive the round trip too.
			want := crypto.PubkeyToAddress(key.PublicKey)
			from, err := Sender(signer, &parsed)
			if err != nil {
				t.Fatalf("sender recovery failed: %v", err)
			}
			if from != want {
				t.Errorf("sender mismatch: got %x want %x", from, want)
			}
		})
	}
}

func TestTransactionHashDistinct(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	base := &DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     1,
		To:        &to,
		Value:     big.NewInt(10),
		Gas:       21000,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(10),
	}
	h := NewTx(base).Hash()

	mutations := []func(*DynamicFeeTx){
		func(tx *DynamicFeeTx) { tx.Nonce = 2 },
		func(tx *DynamicFeeTx) { tx.Value = big.NewInt(11) },
		func(tx *DynamicFeeTx) { tx.Gas = 21001 },
		func(tx *DynamicFeeTx) { tx.GasFeeCap = big.NewInt(11) },
		func(tx *DynamicFeeTx) { tx.To = nil },
		func(tx *DynamicFeeTx) { tx.Data = []byte{0x01} },
	}
	for i, mutate := range mutations {
		cpy := *base
		mutate(&cpy)
		if NewTx(&cpy).Hash() == h {
			t.Errorf("mutation %d did not change the hash", i)
		}
	}
}

func TestTransactionProtected(t *testing.T) {
	if rightvrsTx.Protected() {
		t.Error("homestead-signed transaction reported as protected")
	}
	key, _ := crypto.GenerateKey()
	tx, err := SignNewTx(key, NewEIP155Signer(big.NewInt(1)), &LegacyTx{
		Nonce:    0,
		GasPrice: big.NewInt(1),
		Gas:      21000,
		To:       &testAddr,
		Value:    big.NewInt(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !tx.Protected() {
		t.Error("EIP155-signed transaction reported as unprotected")
	}
	if tx.ChainId().Cmp(big.NewInt(1)) != 0 {
		t.Errorf("ChainId() = %v, want 1", tx.ChainId())
	}
}

func TestBlobTxNetworkEncoding(t *testing.T) {
	sidecar := &BlobTxSidecar{
		Blobs:       []kzg4844.Blob{{}},
		Commitments: []kzg4844.Commitment{{0xc0}},
		Proofs:      []kzg4844.Proof{{0xc0}},
	}
	inner := &BlobTx{
		ChainID:    uint256.NewInt(1),
		Nonce:      3,
		To:         testAddr,
		Value:      uint256.NewInt(10),
		Gas:        21000,
		GasTipCap:  uint256.NewInt(1),
		GasFeeCap:  uint256.NewInt(10),
		BlobFeeCap: uint256.NewInt(5),
		BlobHashes: sidecar.BlobHashes(),
		Sidecar:    sidecar,
	}
	signer := NewCancunSigner(big.NewInt(1))
	tx, _ := signTestTx(t, signer, inner)

	if tx.BlobTxSidecar() == nil {
		t.Fatal("sidecar lost during signing")
	}
	enc, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	var parsed Transaction
	if err := parsed.UnmarshalBinary(enc); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	sc := parsed.BlobTxSidecar()
	if sc == nil {
		t.Fatal("sidecar lost in network encoding round trip")
	}
	if len(sc.Blobs) != 1 || sc.Commitments[0] != sidecar.Commitments[0] || sc.Proofs[0] != sidecar.Proofs[0] {
		t.Error("sidecar content mismatch after round trip")
	}

	// The hash covers the canonical fields only, so stripping the sidecar
	// must not change it.
	if got := parsed.WithoutBlobTxSidecar().Hash(); got != tx.Hash() {
		t.Errorf("hash changed without sidecar: got %x want %x", got, tx.Hash())
	}

	// The canonical encoding of the stripped tx is a prefix-compatible typed
	// encoding without the blob wrapper, and is smaller.
	slim, err := parsed.WithoutBlobTxSidecar().MarshalBinary()
	if err != nil {
		t.Fatalf("slim encode error: %v", err)
	}
	if len(slim) >= len(enc) {
		t.Errorf("canonical encoding (%d bytes) not smaller than network encoding (%d bytes)", len(slim), len(enc))
	}
}

func TestTransactionSize(t *testing.T) {
	for _, tx := range []*Transaction{emptyTx, rightvrsTx} {
		enc, err := tx.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if got, want := tx.Size(), uint64(len(enc)); got != want {
			t.Errorf("Size() = %d, want %d", got, want)
		}
		// second call hits the cache
		if got, want := tx.Size(), uint64(len(enc)); got != want {
			t.Errorf("cached Size() = %d, want %d", got, want)
		}
	}
}

func TestTxDifference(t *testing.T) {
	keep := Transactions{emptyTx, rightvrsTx}
	if diff := TxDifference(keep, Transactions{rightvrsTx}); len(diff) != 1 || diff[0].Hash() != emptyTx.Hash() {
		t.Errorf("wrong difference: %v", diff)
	}
	if diff := TxDifference(keep, keep); len(diff) != 0 {
		t.Errorf("difference with itself not empty: %v", diff)
	}
}

func TestEffectiveGasTip(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	tx := NewTx(&DynamicFeeTx{
		ChainID:   big.NewInt(1),
		To:        &to,
		Gas:       21000,
		GasTipCap: big.NewInt(2),
		GasFeeCap: big.NewInt(10),
	})
	// tip fits under the cap
	tip, err := tx.EffectiveGasTip(big.NewInt(5))
	if err != nil || tip.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("EffectiveGasTip(5) = %v, %v, want 2", tip, err)
	}
	// tip is squeezed by the cap
	tip, err = tx.EffectiveGasTip(big.NewInt(9))
	if err != nil || tip.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("EffectiveGasTip(9) = %v, %v, want 1", tip, err)
	}
	// base fee exceeds the cap
	if _, err = tx.EffectiveGasTip(big.NewInt(11)); !errors.Is(err, ErrGasFeeCapTooLow) {
		t.Errorf("EffectiveGasTip(11) error = %v, want %v", err, ErrGasFeeCapTooLow)
	}
	// effective gas price is capped by the fee cap
	if got := tx.EffectiveGasPrice(big.NewInt(9)); got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("EffectiveGasPrice(9) = %v, want 10", got)
	}
	if got := tx.EffectiveGasPrice(big.NewInt(5)); got.Cmp(big.NewInt(7)) != 0 {
		t.Errorf("EffectiveGasPrice(5) = %v, want 7", got)
	}
}
