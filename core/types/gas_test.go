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
	"math/big"
	"testing"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/params"
	"github.com/holiman/uint256"
)

func TestIntrinsicGas(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		accessList AccessList
		creation   bool
		homestead  bool
		eip2028    bool
		eip3860    bool
		want       uint64
	}{
		{name: "plain transfer", want: params.TxGas},
		{name: "frontier creation", creation: true, want: params.TxGas},
		{name: "homestead creation", creation: true, homestead: true, want: params.TxGasContractCreation},
		{
			name: "frontier data",
			data: []byte{0, 0, 1, 2},
			want: params.TxGas + 2*params.TxDataZeroGas + 2*params.TxDataNonZeroGasFrontier,
		},
		{
			name:    "istanbul data",
			data:    []byte{0, 0, 1, 2},
			eip2028: true,
			want:    params.TxGas + 2*params.TxDataZeroGas + 2*params.TxDataNonZeroGasEIP2028,
		},
		{
			name: "access list",
			accessList: AccessList{{
				Address:     common.HexToAddress("0x01"),
				StorageKeys: []common.Hash{{1}, {2}, {3}},
			}},
			want: params.TxGas + params.TxAccessListAddressGas + 3*params.TxAccessListStorageKeyGas,
		},
		{
			name:      "shanghai initcode",
			data:      make([]byte, 33), // 2 words
			creation:  true,
			homestead: true,
			eip3860:   true,
			want:      params.TxGasContractCreation + 33*params.TxDataZeroGas + 2*params.InitCodeWordGas,
		},
		{
			name:     "initcode without creation",
			data:     make([]byte, 33),
			eip3860:  true,
			creation: false,
			want:     params.TxGas + 33*params.TxDataZeroGas,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := IntrinsicGas(test.data, test.accessList, test.creation, test.homestead, test.eip2028, test.eip3860)
			if err != nil {
				t.Fatalf("IntrinsicGas error: %v", err)
			}
			if got != test.want {
				t.Errorf("IntrinsicGas = %d, want %d", got, test.want)
			}
		})
	}
}

func TestTransactionIntrinsicGas(t *testing.T) {
	rules := params.TestChainConfig.Rules(big.NewInt(0), 0)
	to := common.HexToAddress("0x01")

	tx := NewTx(&DynamicFeeTx{
		ChainID:   big.NewInt(1),
		To:        &to,
		Gas:       21000,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
	})
	if got, err := tx.IntrinsicGas(rules); err != nil || got != params.TxGas {
		t.Errorf("IntrinsicGas = %d, %v, want %d", got, err, params.TxGas)
	}

	// Contract creation pays the larger base fee plus initcode words.
	create := NewTx(&LegacyTx{
		GasPrice: big.NewInt(1),
		Gas:      100000,
		Data:     make([]byte, 32),
	})
	want := params.TxGasContractCreation + 32*params.TxDataZeroGas + params.InitCodeWordGas
	if got, err := create.IntrinsicGas(rules); err != nil || got != want {
		t.Errorf("creation IntrinsicGas = %d, %v, want %d", got, err, want)
	}
}

func TestBlobGas(t *testing.T) {
	tx := NewTx(&BlobTx{
		ChainID:    uint256.NewInt(1),
		Gas:        21000,
		BlobFeeCap: uint256.NewInt(1),
		BlobHashes: []common.Hash{{0x01}, {0x01, 0x02}},
	})
	if got, want := tx.BlobGas(), uint64(2*params.BlobTxBlobGasPerBlob); got != want {
		t.Errorf("BlobGas = %d, want %d", got, want)
	}
	// Blob gas is a separate dimension, it does not raise the intrinsic gas.
	rules := params.TestChainConfig.Rules(big.NewInt(0), 0)
	if got, err := tx.IntrinsicGas(rules); err != nil || got != params.TxGas {
		t.Errorf("IntrinsicGas = %d, %v, want %d", got, err, params.TxGas)
	}
	// Non-blob transactions have no blob gas.
	if got := rightvrsTx.BlobGas(); got != 0 {
		t.Errorf("legacy BlobGas = %d, want 0", got)
	}
}
