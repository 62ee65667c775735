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
	"sync"

	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/crypto"
	"github.com/basaltchain/go-basalt/rlp"
)

// hasherPool holds LegacyKeccak256 hashers for rlpHash.
var hasherPool = sync.Pool{
	New: func() interface{} { return crypto.NewKeccakState() },
}

// encodeBufferPool holds temporary encoder buffers for transaction encoding.
var encodeBufferPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// rlpHash encodes the fields written by enc and hashes the encoded bytes.
func rlpHash(enc func(w rlp.EncoderBuffer)) (h common.Hash) {
	sha := hasherPool.Get().(crypto.KeccakState)
	defer hasherPool.Put(sha)
	sha.Reset()
	w := rlp.NewEncoderBuffer(sha)
	enc(w)
	w.Flush()
	sha.Read(h[:])
	return h
}

// prefixedRlpHash writes the prefix into the hasher before encoding the fields
// written by enc. It's used for typed transactions.
func prefixedRlpHash(prefix byte, enc func(w rlp.EncoderBuffer)) (h common.Hash) {
	sha := hasherPool.Get().(crypto.KeccakState)
	defer hasherPool.Put(sha)
	sha.Reset()
	sha.Write([]byte{prefix})
	w := rlp.NewEncoderBuffer(sha)
	enc(w)
	w.Flush()
	sha.Read(h[:])
	return h
}
