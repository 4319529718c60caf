// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package commitment verifies that a block's aggregated transaction body
// balances: the sum of its output commitments minus the sum of its input
// commitments must equal the sum of its kernel excesses, and every kernel
// must carry a valid signature made with the blinding factor behind its
// excess.  Together the two checks prove no value was created or destroyed
// without revealing any amounts.
package commitment

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/kukanet/kukad/wire"
)

var (
	// ErrCommitmentSum is returned when the block's commitments and
	// kernel excesses do not sum to the point at infinity.
	ErrCommitmentSum = errors.New("block commitments do not sum to zero")

	// ErrBadExcessSig is returned when a kernel signature does not verify
	// against the kernel's excess.
	ErrBadExcessSig = errors.New("kernel excess signature is invalid")
)

// infinityPoint is the jacobian representation of the point at infinity.
var infinityPoint btcec.JacobianPoint

// VerifyBlock checks that the block's body balances and that every kernel
// signature is valid.  A nil error means the body is cryptographically sound;
// it says nothing about whether the inputs exist or are unspent.
func VerifyBlock(block *wire.Block) error {
	// sum = outputs - inputs - excesses, accumulated incrementally.
	var sum btcec.JacobianPoint

	for i := range block.Outputs {
		err := addCommitment(&sum, &block.Outputs[i], false)
		if err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}
	for i := range block.Inputs {
		err := addCommitment(&sum, &block.Inputs[i], true)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}

	for i := range block.Kernels {
		kernel := &block.Kernels[i]
		pubKey, err := btcec.ParsePubKey(kernel.Excess[:])
		if err != nil {
			return fmt.Errorf("kernel %d excess: %w", i, err)
		}

		sig, err := ecdsa.ParseDERSignature(kernel.ExcessSig)
		if err != nil {
			return fmt.Errorf("kernel %d signature: %w", i, err)
		}
		sigHash := kernel.SignHash()
		if !sig.Verify(sigHash[:], pubKey) {
			return fmt.Errorf("kernel %d: %w", i, ErrBadExcessSig)
		}

		var excessJ btcec.JacobianPoint
		pubKey.AsJacobian(&excessJ)
		excessJ.Y.Negate(1)
		excessJ.Y.Normalize()
		btcec.AddNonConst(&sum, &excessJ, &sum)
	}

	if sum != infinityPoint {
		return ErrCommitmentSum
	}
	return nil
}

// addCommitment parses a serialized commitment and adds it (or its negation)
// to the running sum.
func addCommitment(sum *btcec.JacobianPoint, commit *wire.Commitment,
	negate bool) error {

	pubKey, err := btcec.ParsePubKey(commit[:])
	if err != nil {
		return err
	}

	var pointJ btcec.JacobianPoint
	pubKey.AsJacobian(&pointJ)
	if negate {
		pointJ.Y.Negate(1)
		pointJ.Y.Normalize()
	}
	btcec.AddNonConst(sum, &pointJ, sum)
	return nil
}
