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

/*
Package rlp implements the RLP serialization format.

The purpose of RLP (Recursive Linear Prefix) is to encode arbitrarily nested
arrays of binary data, and RLP is the main encoding method used to serialize
objects in the basalt protocol. All consensus objects in go-basalt carry
hand-written encoders and decoders built on EncoderBuffer and Stream, which
keeps every wire schema an explicit, ordered field list.

Encoding is canonical: a given value has exactly one valid encoding. The
decoder enforces this and rejects non-minimal integers, non-minimal size
prefixes, single bytes below 0x80 carrying a string header, elements that
overrun their enclosing list, and trailing input after a complete value.
*/
package rlp
