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
	"github.com/basaltchain/go-basalt/common"
	"github.com/basaltchain/go-basalt/rlp"
)

// Log represents a contract log event. These events are generated by the LOG opcode and
// stored/indexed by the node.
type Log struct {
	// Consensus fields:
	// address of the contract that generated the event
	Address common.Address
	// list of topics provided by the contract.
	Topics []common.Hash
	// supplied by the contract, usually ABI-encoded
	Data []byte

	// Derived fields. These fields are filled in by the node
	// but not secured by consensus.
	// block in which the transaction was included
	BlockNumber uint64
	// hash of the transaction
	TxHash common.Hash
	// index of the transaction in the block
	TxIndex uint
	// hash of the block in which the transaction was included
	BlockHash common.Hash
	// index of the log in the block
	Index uint

	// The Removed field is true if this log was reverted due to a chain reorganisation.
	Removed bool
}

// encodeConsensus writes the consensus fields of the log.
func (l *Log) encodeConsensus(w rlp.EncoderBuffer) {
	list := w.List()
	w.WriteBytes(l.Address[:])
	topics := w.List()
	for _, topic := range l.Topics {
		w.WriteBytes(topic[:])
	}
	w.ListEnd(topics)
	w.WriteBytes(l.Data)
	w.ListEnd(list)
}

// decodeLog reads the consensus fields of a log.
func decodeLog(s *rlp.Stream) (*Log, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	l := new(Log)
	if err := s.ReadBytes(l.Address[:]); err != nil {
		return nil, err
	}
	var err error
	if l.Topics, err = decodeHashList(s); err != nil {
		return nil, err
	}
	if l.Data, err = s.Bytes(); err != nil {
		return nil, err
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return l, nil
}

// writeLogs encodes a list of logs with their consensus fields only.
func writeLogs(w rlp.EncoderBuffer, logs []*Log) {
	list := w.List()
	for _, log := range logs {
		log.encodeConsensus(w)
	}
	w.ListEnd(list)
}

// decodeLogs reads a list of logs.
func decodeLogs(s *rlp.Stream) ([]*Log, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	logs := []*Log{}
	for s.MoreDataInList() {
		log, err := decodeLog(s)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return logs, nil
}
