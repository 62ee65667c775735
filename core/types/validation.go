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
	"fmt"
	"math/big"
)

// ValidationError is returned when a transaction payload fails its structural
// or numeric-range checks. Field names the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction field %q: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// checkBig verifies that a big integer field is non-negative and fits the
// 256 bit width shared by all monetary transaction fields. Nil is accepted,
// copy() normalizes nil fields to zero.
func checkBig(field string, v *big.Int) error {
	if v == nil {
		return nil
	}
	if v.Sign() < 0 {
		return validationErrorf(field, "negative value")
	}
	if v.BitLen() > 256 {
		return validationErrorf(field, "exceeds 256 bits")
	}
	return nil
}

// Validate checks the structural and numeric-range rules of the payload.
// It is applied before a payload may be signed, and to every payload accepted
// from the wire.
func (tx *Transaction) Validate() error {
	return tx.inner.validate()
}

func (tx *LegacyTx) validate() error {
	if err := checkBig("gasPrice", tx.GasPrice); err != nil {
		return err
	}
	if err := checkBig("value", tx.Value); err != nil {
		return err
	}
	return validateSignatureFields(tx.V, tx.R, tx.S)
}

func (tx *AccessListTx) validate() error {
	if err := checkBig("chainId", tx.ChainID); err != nil {
		return err
	}
	if err := checkBig("gasPrice", tx.GasPrice); err != nil {
		return err
	}
	if err := checkBig("value", tx.Value); err != nil {
		return err
	}
	return validateSignatureFields(tx.V, tx.R, tx.S)
}

func (tx *DynamicFeeTx) validate() error {
	if err := checkBig("chainId", tx.ChainID); err != nil {
		return err
	}
	if err := checkBig("maxPriorityFeePerGas", tx.GasTipCap); err != nil {
		return err
	}
	if err := checkBig("maxFeePerGas", tx.GasFeeCap); err != nil {
		return err
	}
	if err := checkBig("value", tx.Value); err != nil {
		return err
	}
	return validateSignatureFields(tx.V, tx.R, tx.S)
}

func (tx *BlobTx) validate() error {
	// The uint256 fields are range-bound by construction, only the blob
	// hash list needs checking here.
	if len(tx.BlobHashes) == 0 {
		return validationErrorf("blobVersionedHashes", "empty blob hash list")
	}
	return nil
}

// validateSignatureFields bounds-checks the raw signature values. Zero values
// are accepted: the payload may not be signed yet, and attributing a sender to
// a zeroed signature fails in recovery instead.
func validateSignatureFields(v, r, s *big.Int) error {
	if err := checkBig("v", v); err != nil {
		return err
	}
	if err := checkBig("r", r); err != nil {
		return err
	}
	return checkBig("s", s)
}
