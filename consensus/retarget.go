// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

const (
	// BlockTimeSec is the target interval between blocks, in seconds.
	BlockTimeSec = 60

	// MinimumDifficulty is the floor the retarget function never adjusts
	// below, regardless of how slowly blocks arrive.
	MinimumDifficulty Difficulty = 10

	// MaxCuckooSize is the largest Cuckoo graph size shift the retarget
	// function will ever require.
	MaxCuckooSize uint8 = 32

	// retargetClampNum and retargetClampDen bound a single retarget step
	// to +/- 1/4 of the previous difficulty so a single outlier timestamp
	// cannot swing the target wildly.
	retargetClampNum = 1
	retargetClampDen = 4
)

// sizeShiftDifficulty returns the difficulty at which the graph size shift
// steps up from the given size.  Larger graphs make individual proof attempts
// more expensive, so the shift only happens once the chain difficulty shows
// the network can absorb it.
func sizeShiftDifficulty(sizeShift uint8) Difficulty {
	return Difficulty(1) << (uint(sizeShift) + 4)
}

// NextTarget computes the expected difficulty and Cuckoo graph size shift for
// the block following a parent with the given difficulty and size shift.  It
// is a pure function of its inputs.
//
// The difficulty adjusts every block: solve times shorter than the target
// interval raise it and longer ones lower it, damped so the new value stays
// within +/- 1/4 of the parent difficulty and never below MinimumDifficulty.
// The size shift grows by at most one per block once the difficulty crosses
// the threshold for the current size, and never shrinks.
func NextTarget(ts, prevTs int64, prevDiff Difficulty,
	prevSizeShift uint8) (Difficulty, uint8) {

	solveTime := ts - prevTs
	if solveTime < 1 {
		solveTime = 1
	}

	// next = prev * 2*target / (target + solveTime), computed in uint64
	// halves to avoid overflowing the multiplication for very large
	// difficulties.
	scale := uint64(2 * BlockTimeSec)
	div := uint64(BlockTimeSec) + uint64(solveTime)
	next := Difficulty(uint64(prevDiff) / div * scale)
	if uint64(prevDiff) < 1<<32 {
		// Small difficulties lose too much precision dividing first.
		next = Difficulty(uint64(prevDiff) * scale / div)
	}

	// Clamp the step.
	clamp := prevDiff / retargetClampDen * retargetClampNum
	if clamp == 0 {
		clamp = 1
	}
	if upper := prevDiff + clamp; upper >= prevDiff && next > upper {
		next = upper
	}
	if prevDiff > clamp && next < prevDiff-clamp {
		next = prevDiff - clamp
	}
	if next < MinimumDifficulty {
		next = MinimumDifficulty
	}

	sizeShift := prevSizeShift
	if sizeShift < MaxCuckooSize && next >= sizeShiftDifficulty(sizeShift) {
		sizeShift++
	}

	return next, sizeShift
}
