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

package common

import (
	"bytes"
	"math/big"
	"testing"
)

func TestBytesToHash(t *testing.T) {
	// Short input is left-padded.
	h := BytesToHash([]byte{0x01, 0x02})
	var want Hash
	want[30], want[31] = 0x01, 0x02
	if h != want {
		t.Errorf("BytesToHash short input = %x, want %x", h, want)
	}

	// Oversized input is cropped from the left.
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	h = BytesToHash(long)
	if !bytes.Equal(h.Bytes(), long[8:]) {
		t.Errorf("BytesToHash long input = %x, want %x", h, long[8:])
	}
}

func TestHashHexRoundTrip(t *testing.T) {
	in := "0x00000000000000000000000000000000000000000000000000000000deadbeef"
	h := HexToHash(in)
	if h.Hex() != in {
		t.Errorf("Hex() = %s, want %s", h.Hex(), in)
	}
	if h.Big().Cmp(big.NewInt(0xdeadbeef)) != 0 {
		t.Errorf("Big() = %v, want 0xdeadbeef", h.Big())
	}
}

func TestAddressHexRoundTrip(t *testing.T) {
	in := "0x970e8128ab834e8eac17ab8e3812f010678cf791"
	a := HexToAddress(in)
	if a.Hex() != in {
		t.Errorf("Hex() = %s, want %s", a.Hex(), in)
	}
	if BytesToAddress(a.Bytes()) != a {
		t.Error("BytesToAddress(a.Bytes()) != a")
	}
}

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		str string
		exp bool
	}{
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0X5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed1", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beae", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaeg", false},
		{"", false},
	}
	for _, test := range tests {
		if result := IsHexAddress(test.str); result != test.exp {
			t.Errorf("IsHexAddress(%s) == %v; expected %v", test.str, result, test.exp)
		}
	}
}

func TestAddressFormat(t *testing.T) {
	a := HexToAddress("0xb26f2b342aab24bcf63ea218c6a9274d30ab9a15")
	if got := a.String(); got != "0xb26f2b342aab24bcf63ea218c6a9274d30ab9a15" {
		t.Errorf("String() = %s", got)
	}
	if got := a.Hash(); got != HexToHash("0x000000000000000000000000b26f2b342aab24bcf63ea218c6a9274d30ab9a15") {
		t.Errorf("Hash() = %s", got)
	}
}

func TestAddressCmp(t *testing.T) {
	a := HexToAddress("0x01")
	b := HexToAddress("0x02")
	if a.Cmp(b) >= 0 {
		t.Error("a.Cmp(b) >= 0")
	}
	if b.Cmp(a) <= 0 {
		t.Error("b.Cmp(a) <= 0")
	}
	if a.Cmp(a) != 0 {
		t.Error("a.Cmp(a) != 0")
	}
}
