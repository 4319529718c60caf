// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters for the supported
// kukad networks.
package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/wire"
)

// Params defines a kukad network by its parameters.  These parameters may be
// used by applications to differentiate networks.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.Block

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// TargetTimePerBlock is the desired amount of time between blocks.
	TargetTimePerBlock time.Duration

	// ProofSize is the cycle length a proof of work must have.
	ProofSize int

	// CuckooSize is the size shift of the Cuckoo graph at the start of the
	// chain.  The retarget schedule may grow it over time.
	CuckooSize uint8

	// RelaxedPowSizeShift is the graph size used to verify proofs when the
	// chain runs with relaxed proof of work checking.  It is small enough
	// that test fixtures can be mined on the fly.
	RelaxedPowSizeShift uint8
}

// MainNetParams defines the network parameters for the main kukad network.
var MainNetParams = Params{
	Name: "mainnet",

	GenesisBlock: &genesisBlock,
	GenesisHash:  &genesisHash,

	TargetTimePerBlock:  time.Minute,
	ProofSize:           42,
	CuckooSize:          30,
	RelaxedPowSizeShift: 16,
}

// SimNetParams defines the network parameters for the simulation test
// network.  This network is similar to the main network except it is
// intended for private use within a group of individuals doing simulation
// testing: its graph is small enough to mine with the reference solver.
var SimNetParams = Params{
	Name: "simnet",

	GenesisBlock: &simNetGenesisBlock,
	GenesisHash:  &simNetGenesisHash,

	TargetTimePerBlock:  time.Minute,
	ProofSize:           4,
	CuckooSize:          8,
	RelaxedPowSizeShift: 8,
}
