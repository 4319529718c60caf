// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/consensus"
	"github.com/kukanet/kukad/wire"
)

// genesisBlock defines the genesis block of the block chain which serves as
// the public ledger for the main network.  Genesis carries no transactions
// and no proof of work; it is trusted by definition and never run through
// block validation.
var genesisBlock = wire.Block{
	Header: wire.BlockHeader{
		Version:         1,
		Height:          0,
		PrevBlock:       chainhash.Hash{},
		Timestamp:       time.Unix(0x68b19640, 0), // 2025-08-29 12:00:00 +0000 UTC
		Difficulty:      uint64(consensus.MinimumDifficulty),
		TotalDifficulty: 0,
		CuckooSize:      30,
		Nonce:           0,
	},
}

// genesisHash is the hash of the first block in the block chain for the main
// network.
var genesisHash = genesisBlock.Header.BlockHash()

// simNetGenesisBlock defines the genesis block of the block chain which
// serves as the public ledger for the simulation test network.
var simNetGenesisBlock = wire.Block{
	Header: wire.BlockHeader{
		Version:         1,
		Height:          0,
		PrevBlock:       chainhash.Hash{},
		Timestamp:       time.Unix(0x68b19640, 0), // 2025-08-29 12:00:00 +0000 UTC
		Difficulty:      uint64(consensus.MinimumDifficulty),
		TotalDifficulty: 0,
		CuckooSize:      8,
		Nonce:           0,
	},
}

// simNetGenesisHash is the hash of the first block in the block chain for
// the simulation test network.
var simNetGenesisHash = simNetGenesisBlock.Header.BlockHash()
