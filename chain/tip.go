// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/consensus"
)

// Tip describes the head of the chain: the most recently accepted block,
// its parent, and the cumulative work behind it.
type Tip struct {
	// Height is the number of blocks between this tip and the genesis
	// block.
	Height uint64

	// LastBlock is the hash of the block this tip points to.
	LastBlock chainhash.Hash

	// PrevBlock is the hash of that block's parent.
	PrevBlock chainhash.Hash

	// TotalDifficulty is the cumulative difficulty of the chain up to and
	// including the block this tip points to.
	TotalDifficulty consensus.Difficulty
}

// NewTip returns the tip for a chain containing only the given genesis
// block.
func NewTip(genesisHash chainhash.Hash) Tip {
	return Tip{
		LastBlock: genesisHash,
		PrevBlock: genesisHash,
	}
}

// Append returns the tip that results from extending the chain with the
// given block.  The cumulative difficulty grows by the difficulty the
// previous head's hash attained, so total work is a function of hashes the
// chain already committed to rather than of self-reported header fields.
func (t Tip) Append(blockHash chainhash.Hash) Tip {
	return Tip{
		Height:          t.Height + 1,
		LastBlock:       blockHash,
		PrevBlock:       t.LastBlock,
		TotalDifficulty: t.TotalDifficulty + consensus.FromHash(&t.LastBlock),
	}
}
