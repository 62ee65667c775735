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

package core

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/core/types"
	"github.com/basaltchain/go-basalt/crypto"
	"github.com/basaltchain/go-basalt/crypto/kzg4844"
	"github.com/basaltchain/go-basalt/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const acceptAll = 1<<types.LegacyTxType | 1<<types.AccessListTxType | 1<<types.DynamicFeeTxType | 1<<types.BlobTxType

var (
	testChainID = params.TestChainConfig.ChainID
	testRules   = params.TestChainConfig.Rules(common.Big0, 0)
)

func defaultOpts() *ValidationOptions {
	return &ValidationOptions{
		Accept:  acceptAll,
		MaxSize: 1024 * 1024, // large enough for a full blob transaction
		MinTip:  new(big.Int),
	}
}

func testKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func validSidecar(t *testing.T) *types.BlobTxSidecar {
	t.Helper()
	blob := new(kzg4844.Blob)
	commitment, err := kzg4844.BlobToCommitment(blob)
	require.NoError(t, err)
	proof, err := kzg4844.ComputeBlobProof(blob, commitment)
	require.NoError(t, err)
	return &types.BlobTxSidecar{
		Blobs:       []kzg4844.Blob{*blob},
		Commitments: []kzg4844.Commitment{commitment},
		Proofs:      []kzg4844.Proof{proof},
	}
}

func makeBlobTx(t *testing.T, key *ecdsa.PrivateKey, mutate func(*types.BlobTx)) *types.Transaction {
	t.Helper()
	sidecar := validSidecar(t)
	inner := &types.BlobTx{
		ChainID:    uint256.MustFromBig(testChainID),
		Nonce:      0,
		GasTipCap:  uint256.NewInt(1),
		GasFeeCap:  uint256.NewInt(10),
		Gas:        21000,
		To:         common.HexToAddress("0x01"),
		BlobFeeCap: uint256.NewInt(1),
		BlobHashes: sidecar.BlobHashes(),
		Sidecar:    sidecar,
	}
	if mutate != nil {
		mutate(inner)
	}
	tx, err := types.SignNewTx(key, types.NewCancunSigner(testChainID), inner)
	require.NoError(t, err)
	return tx
}

func TestValidateTransaction(t *testing.T) {
	key, _ := testKey(t)
	signer := types.LatestSigner(params.TestChainConfig)
	to := common.HexToAddress("0x0000000000000000000000000000000000000aaa")

	sign := func(txdata types.TxData) *types.Transaction {
		tx, err := types.SignNewTx(key, signer, txdata)
		require.NoError(t, err)
		return tx
	}
	legacy := sign(&types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000, To: &to})
	dynfee := sign(&types.DynamicFeeTx{
		ChainID: testChainID, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(10), Gas: 21000, To: &to,
	})

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateTransaction(legacy, signer, testRules, defaultOpts()))
		require.NoError(t, ValidateTransaction(dynfee, signer, testRules, defaultOpts()))
		require.NoError(t, ValidateTransaction(makeBlobTx(t, key, nil), signer, testRules, defaultOpts()))
	})

	t.Run("type not accepted", func(t *testing.T) {
		opts := defaultOpts()
		opts.Accept = 1 << types.LegacyTxType
		err := ValidateTransaction(dynfee, signer, testRules, opts)
		require.ErrorIs(t, err, ErrTxTypeNotSupported)
	})

	t.Run("oversized", func(t *testing.T) {
		opts := defaultOpts()
		opts.MaxSize = 32
		err := ValidateTransaction(legacy, signer, testRules, opts)
		require.ErrorIs(t, err, ErrOversizedData)
	})

	t.Run("fork gating", func(t *testing.T) {
		frontier := params.Rules{ChainID: testChainID, IsHomestead: true}
		require.ErrorIs(t, ValidateTransaction(dynfee, signer, frontier, defaultOpts()), ErrTxTypeNotSupported)

		berlin := frontier
		berlin.IsBerlin = true
		require.ErrorIs(t, ValidateTransaction(dynfee, signer, berlin, defaultOpts()), ErrTxTypeNotSupported)

		london := berlin
		london.IsLondon = true
		require.NoError(t, ValidateTransaction(dynfee, signer, london, defaultOpts()))
		require.ErrorIs(t, ValidateTransaction(makeBlobTx(t, key, nil), signer, london, defaultOpts()), ErrTxTypeNotSupported)
	})

	t.Run("initcode size", func(t *testing.T) {
		tx := sign(&types.LegacyTx{
			GasPrice: big.NewInt(1),
			Gas:      10_000_000,
			Data:     make([]byte, params.MaxInitCodeSize+1),
		})
		require.ErrorIs(t, ValidateTransaction(tx, signer, testRules, defaultOpts()), ErrMaxInitCodeSizeExceeded)

		// Without the Shanghai rules the same transaction is size-legal.
		preShanghai := testRules
		preShanghai.IsShanghai = false
		preShanghai.IsCancun = false
		require.NoError(t, ValidateTransaction(tx, signer, preShanghai, defaultOpts()))
	})

	t.Run("tip above fee cap", func(t *testing.T) {
		tx := sign(&types.DynamicFeeTx{
			ChainID: testChainID, GasTipCap: big.NewInt(10), GasFeeCap: big.NewInt(1), Gas: 21000, To: &to,
		})
		require.ErrorIs(t, ValidateTransaction(tx, signer, testRules, defaultOpts()), ErrTipAboveFeeCap)
	})

	t.Run("unsigned", func(t *testing.T) {
		tx := types.NewTx(&types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000, To: &to})
		require.ErrorIs(t, ValidateTransaction(tx, signer, testRules, defaultOpts()), ErrInvalidSender)
	})

	t.Run("intrinsic gas too low", func(t *testing.T) {
		tx := sign(&types.LegacyTx{GasPrice: big.NewInt(1), Gas: 20000, To: &to})
		require.ErrorIs(t, ValidateTransaction(tx, signer, testRules, defaultOpts()), ErrIntrinsicGas)
	})

	t.Run("underpriced", func(t *testing.T) {
		opts := defaultOpts()
		opts.MinTip = big.NewInt(2)
		require.ErrorIs(t, ValidateTransaction(dynfee, signer, testRules, opts), ErrUnderpriced)
	})
}

func TestValidateBlobTransaction(t *testing.T) {
	key, _ := testKey(t)
	signer := types.LatestSigner(params.TestChainConfig)

	t.Run("blob fee too low", func(t *testing.T) {
		tx := makeBlobTx(t, key, func(inner *types.BlobTx) {
			inner.BlobFeeCap = uint256.NewInt(0)
		})
		require.ErrorIs(t, ValidateTransaction(tx, signer, testRules, defaultOpts()), ErrUnderpriced)
	})

	t.Run("bad hash version", func(t *testing.T) {
		tx := makeBlobTx(t, key, func(inner *types.BlobTx) {
			inner.BlobHashes = []common.Hash{{0x02}}
		})
		err := ValidateTransaction(tx, signer, testRules, defaultOpts())
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid hash version")
	})

	t.Run("missing sidecar", func(t *testing.T) {
		tx := makeBlobTx(t, key, nil).WithoutBlobTxSidecar()
		err := ValidateTransaction(tx, signer, testRules, defaultOpts())
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing sidecar")
	})

	t.Run("hash mismatch", func(t *testing.T) {
		tx := makeBlobTx(t, key, func(inner *types.BlobTx) {
			h := inner.BlobHashes[0]
			h[31] ^= 0xff
			inner.BlobHashes = []common.Hash{h}
		})
		err := ValidateTransaction(tx, signer, testRules, defaultOpts())
		require.Error(t, err)
		require.Contains(t, err.Error(), "mismatches transaction")
	})

	t.Run("count mismatch", func(t *testing.T) {
		tx := makeBlobTx(t, key, func(inner *types.BlobTx) {
			inner.Sidecar = &types.BlobTxSidecar{
				Blobs:       append(inner.Sidecar.Blobs, inner.Sidecar.Blobs[0]),
				Commitments: inner.Sidecar.Commitments,
				Proofs:      inner.Sidecar.Proofs,
			}
		})
		err := ValidateTransaction(tx, signer, testRules, defaultOpts())
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid number of")
	})
}

func TestValidateTransactionsBatch(t *testing.T) {
	key, _ := testKey(t)
	signer := types.LatestSigner(params.TestChainConfig)
	to := common.HexToAddress("0x01")

	var txs types.Transactions
	for nonce := uint64(0); nonce < 32; nonce++ {
		tx, err := types.SignNewTx(key, signer, &types.DynamicFeeTx{
			ChainID:   testChainID,
			Nonce:     nonce,
			GasTipCap: big.NewInt(1),
			GasFeeCap: big.NewInt(10),
			Gas:       21000,
			To:        &to,
		})
		require.NoError(t, err)
		txs = append(txs, tx)
	}
	require.NoError(t, ValidateTransactions(txs, signer, testRules, defaultOpts()))

	// A bad transaction anywhere in the batch fails the whole batch.
	bad := types.NewTx(&types.LegacyTx{GasPrice: big.NewInt(1), Gas: 21000, To: &to})
	txs = append(txs, bad)
	require.Error(t, ValidateTransactions(txs, signer, testRules, defaultOpts()))
}

func TestSenderCacher(t *testing.T) {
	key, addr := testKey(t)
	signer := types.LatestSigner(params.TestChainConfig)
	to := common.HexToAddress("0x01")

	var txs []*types.Transaction
	for nonce := uint64(0); nonce < 16; nonce++ {
		tx, err := types.SignNewTx(key, signer, &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: big.NewInt(1),
			Gas:      21000,
			To:       &to,
		})
		require.NoError(t, err)
		txs = append(txs, tx)
	}
	SenderCacher.Recover(signer, txs)
	for _, tx := range txs {
		from, err := types.Sender(signer, tx)
		require.NoError(t, err)
		require.Equal(t, addr, from)
	}
}
