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

package rlp

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// EOL is returned when the end of the current list
	// has been reached during streaming.
	EOL = errors.New("rlp: end of list")

	ErrExpectedString   = errors.New("rlp: expected String or Byte")
	ErrExpectedList     = errors.New("rlp: expected List")
	ErrCanonInt         = errors.New("rlp: non-canonical integer format")
	ErrCanonSize        = errors.New("rlp: non-canonical size information")
	ErrElemTooLarge     = errors.New("rlp: element is larger than containing list")
	ErrValueTooLarge    = errors.New("rlp: value size exceeds available input length")
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")

	// internal errors
	errNotInList    = errors.New("rlp: call of ListEnd outside of any list")
	errNotAtEOL     = errors.New("rlp: call of ListEnd not positioned at end of current list")
	errUintOverflow = errors.New("rlp: uint overflow")
)

// Stream provides decoding of canonical RLP input held in memory. It verifies
// canonical form while reading: integers must not carry leading zeroes, sizes
// must use the minimal encoding, and list elements must not overrun the list.
//
// Stream is not safe for concurrent use.
type Stream struct {
	data  []byte
	pos   uint64
	stack []uint64 // end offsets of enclosing lists
}

// NewStream creates a stream over the given input.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// limit returns the offset past which no value may extend. Inside a list this
// is the end of the innermost list, at the top level the end of the input.
func (s *Stream) limit() uint64 {
	if len(s.stack) > 0 {
		return s.stack[len(s.stack)-1]
	}
	return uint64(len(s.data))
}

func (s *Stream) atEnd() error {
	if len(s.stack) > 0 {
		return EOL
	}
	return io.EOF
}

// kind reads the type tag at the current position without consuming it.
func (s *Stream) kind() (k Kind, tagsize, contentsize uint64, err error) {
	lim := s.limit()
	if s.pos >= lim {
		return 0, 0, 0, s.atEnd()
	}
	k, tagsize, contentsize, err = readKind(s.data[s.pos:])
	if err != nil {
		return 0, 0, 0, err
	}
	if s.pos+tagsize+contentsize > lim {
		// The value fits the input but overruns the innermost list.
		return 0, 0, 0, ErrElemTooLarge
	}
	return k, tagsize, contentsize, nil
}

// Kind returns the kind and size of the next value in the stream.
// The returned size is the number of bytes that make up the value's content.
//
// The value is not consumed; Kind can be called multiple times.
func (s *Stream) Kind() (k Kind, size uint64, err error) {
	k, _, size, err = s.kind()
	return k, size, err
}

// Bytes reads an RLP string and returns its contents as a byte slice.
// If the input does not contain an RLP string, the returned error will be
// ErrExpectedString.
func (s *Stream) Bytes() ([]byte, error) {
	k, tagsize, size, err := s.kind()
	if err != nil {
		return nil, err
	}
	if k == List {
		return nil, ErrExpectedString
	}
	b := make([]byte, size)
	copy(b, s.data[s.pos+tagsize:s.pos+tagsize+size])
	s.pos += tagsize + size
	return b, nil
}

// ReadBytes decodes the next RLP value and stores the result in b.
// The value size must match the length of b exactly.
func (s *Stream) ReadBytes(b []byte) error {
	k, tagsize, size, err := s.kind()
	if err != nil {
		return err
	}
	if k == List {
		return ErrExpectedString
	}
	if size != uint64(len(b)) {
		return fmt.Errorf("rlp: input string has wrong length %d, want %d", size, len(b))
	}
	copy(b, s.data[s.pos+tagsize:s.pos+tagsize+size])
	s.pos += tagsize + size
	return nil
}

// Raw reads a raw encoded value including the type tag.
func (s *Stream) Raw() ([]byte, error) {
	_, tagsize, size, err := s.kind()
	if err != nil {
		return nil, err
	}
	b := make([]byte, tagsize+size)
	copy(b, s.data[s.pos:s.pos+tagsize+size])
	s.pos += tagsize + size
	return b, nil
}

// Uint64 decodes a canonical unsigned integer of up to 8 bytes.
func (s *Stream) Uint64() (uint64, error) {
	content, err := s.intContent(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range content {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// Bool decodes an integer and verifies it is 0 or 1.
func (s *Stream) Bool() (bool, error) {
	num, err := s.Uint64()
	if err != nil {
		return false, err
	}
	switch num {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("rlp: invalid boolean value: %d", num)
	}
}

// BigInt decodes an arbitrary-length canonical unsigned integer.
func (s *Stream) BigInt() (*big.Int, error) {
	content, err := s.intContent(0)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(content), nil
}

// ReadUint256 decodes a canonical unsigned integer of up to 32 bytes into z.
func (s *Stream) ReadUint256(z *uint256.Int) error {
	content, err := s.intContent(32)
	if err != nil {
		return err
	}
	z.SetBytes(content)
	return nil
}

// intContent consumes an integer item and returns its content bytes.
// maxBytes bounds the content length; zero means unbounded.
func (s *Stream) intContent(maxBytes uint64) ([]byte, error) {
	k, tagsize, size, err := s.kind()
	if err != nil {
		return nil, err
	}
	if k == List {
		return nil, ErrExpectedString
	}
	if maxBytes != 0 && size > maxBytes {
		return nil, errUintOverflow
	}
	content := s.data[s.pos+tagsize : s.pos+tagsize+size]
	if len(content) > 0 && content[0] == 0 {
		// Integers must not have leading zeroes; in particular the
		// canonical encoding of zero is the empty string.
		return nil, ErrCanonInt
	}
	s.pos += tagsize + size
	return content, nil
}

// List starts decoding an RLP list. If the input does not contain a list, the
// returned error will be ErrExpectedList. When the list's content has been
// fully consumed, ListEnd must be called to finish it.
func (s *Stream) List() (size uint64, err error) {
	k, tagsize, size, err := s.kind()
	if err != nil {
		return 0, err
	}
	if k != List {
		return 0, ErrExpectedList
	}
	s.pos += tagsize
	s.stack = append(s.stack, s.pos+size)
	return size, nil
}

// ListEnd finishes the current list. It returns an error if the list's
// declared content has not been fully consumed, which catches field counts
// that don't match the schema being decoded.
func (s *Stream) ListEnd() error {
	if len(s.stack) == 0 {
		return errNotInList
	}
	if s.pos != s.stack[len(s.stack)-1] {
		return errNotAtEOL
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// MoreDataInList reports whether the current list context contains
// more data to be read.
func (s *Stream) MoreDataInList() bool {
	return len(s.stack) > 0 && s.pos < s.stack[len(s.stack)-1]
}

// Done verifies that the entire input has been consumed. It catches
// trailing bytes after a complete top-level value.
func (s *Stream) Done() error {
	if s.pos != uint64(len(s.data)) {
		return ErrMoreThanOneValue
	}
	return nil
}
