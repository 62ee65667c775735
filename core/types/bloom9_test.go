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

import "testing"

func TestBloom(t *testing.T) {
	positive := []string{
		"testtest",
		"test",
		"hallo",
		"other",
	}
	negative := []string{
		"tes",
		"lo",
	}

	var bloom Bloom
	for _, data := range positive {
		bloom.Add([]byte(data))
	}

	for _, data := range positive {
		if !bloom.Test([]byte(data)) {
			t.Error("expected", data, "to test true")
		}
	}
	for _, data := range negative {
		if bloom.Test([]byte(data)) {
			t.Error("did not expect", data, "to test true")
		}
	}
}

func TestBloomBytes(t *testing.T) {
	var b Bloom
	for i := 0; i < 100; i++ {
		b.Add([]byte{byte(i)})
	}
	// Round trip through bytes
	b2 := BytesToBloom(b.Bytes())
	if b2 != b {
		t.Error("bloom is not equal after BytesToBloom round trip")
	}
	if len(b.Bytes()) != BloomByteLength {
		t.Errorf("bloom bytes length = %d, want %d", len(b.Bytes()), BloomByteLength)
	}
}

func TestCreateBloom(t *testing.T) {
	receipt := &Receipt{Logs: sampleLogs()}
	bloom := CreateBloom(Receipts{receipt})
	for _, log := range receipt.Logs {
		if !BloomLookup(bloom, log.Address) {
			t.Errorf("bloom missing address %x", log.Address)
		}
		for _, topic := range log.Topics {
			if !BloomLookup(bloom, topic) {
				t.Errorf("bloom missing topic %x", topic)
			}
		}
	}
	// Log data is not part of the filter.
	if (Bloom{}) == bloom {
		t.Error("bloom of non-empty logs is empty")
	}
}
