// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"math"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Difficulty is the measure of mining effort required for a block.  Unlike a
// compact target it grows with the work: a block hash h attains difficulty d
// when maxTarget/h >= d.  Total chain difficulty is the plain sum of the
// per-block attained difficulties.
type Difficulty uint64

// oneLsh256 is 1 shifted left 256 bits.  It is defined here to avoid the
// overhead of creating it multiple times.
var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// maxTarget is the highest possible hash value, corresponding to the minimum
// amount of work.
var maxTarget = new(big.Int).Sub(oneLsh256, big.NewInt(1))

// bigMaxUint64 is used to saturate difficulties that exceed the Difficulty
// range.
var bigMaxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// HashToBig converts a chainhash.Hash into a big.Int that can be used to
// perform math comparisons.
func HashToBig(hash *chainhash.Hash) *big.Int {
	// A Hash is in little-endian, but the big package wants the bytes in
	// big-endian, so reverse them.
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(big.Int).SetBytes(buf[:])
}

// FromHash computes the difficulty a hash attains: the maximum target divided
// by the hash interpreted as a large integer.  The result is never zero and
// saturates at the maximum Difficulty value.
func FromHash(hash *chainhash.Hash) Difficulty {
	h := HashToBig(hash)

	// Dividing by h+1 avoids a division by zero for the (unreachable in
	// practice) all-zero hash.
	d := new(big.Int).Div(maxTarget, h.Add(h, big.NewInt(1)))
	if d.Cmp(bigMaxUint64) > 0 {
		return Difficulty(math.MaxUint64)
	}
	if d.Sign() == 0 {
		return 1
	}
	return Difficulty(d.Uint64())
}
