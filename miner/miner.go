// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package miner implements a CPU miner built around the reference Cuckoo
// Cycle solver.  It is only practical on networks whose graph size the
// solver can materialize, which in practice means simulation networks.
package miner

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/chain"
	"github.com/kukanet/kukad/chaincfg"
	"github.com/kukanet/kukad/consensus"
	"github.com/kukanet/kukad/pow"
	"github.com/kukanet/kukad/wire"
)

const (
	// staleCheckSecs is the number of seconds a worker mines on one
	// template before rebuilding it against the current head.
	staleCheckSecs = 15
)

// Config is a descriptor containing the cpu miner configuration.
type Config struct {
	// ChainParams identifies which chain parameters the cpu miner is
	// associated with.
	ChainParams *chaincfg.Params

	// Chain processes solved blocks.  Each solved block is run through
	// the same validation pipeline as blocks arriving from the network.
	Chain *chain.Chain

	// Store resolves the parent header a new block template builds on.
	Store chain.ChainStore

	// EasyPow submits blocks under relaxed proof of work checking and
	// skips the difficulty attainment requirement while solving.  Useful
	// for exercising a simulation network quickly.
	EasyPow bool
}

// CPUMiner provides facilities for solving blocks (mining) using the CPU in
// a concurrency-safe manner.
type CPUMiner struct {
	sync.Mutex
	cfg             Config
	started         bool
	discreteMining  bool
	submitBlockLock sync.Mutex
	wg              sync.WaitGroup
	quit            chan struct{}
}

// New returns a new instance of a CPU miner for the provided configuration.
// Use Start to begin the mining process.  See the documentation for CPUMiner
// type for more details.
func New(cfg *Config) *CPUMiner {
	return &CPUMiner{cfg: *cfg}
}

// buildTemplate assembles an empty block extending the current head, with
// the timestamp, difficulty, and graph size the validation rules demand.
func (m *CPUMiner) buildTemplate() (*wire.Block, error) {
	head, err := m.cfg.Chain.Head()
	if err != nil {
		return nil, err
	}
	parent, err := m.cfg.Store.GetBlockHeader(&head.LastBlock)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Truncate(time.Second)
	if !timestamp.After(parent.Timestamp) {
		timestamp = parent.Timestamp.Add(time.Second)
	}

	header := wire.BlockHeader{
		Version:   1,
		Height:    head.Height + 1,
		PrevBlock: head.LastBlock,
		Timestamp: timestamp,
		TotalDifficulty: parent.TotalDifficulty +
			uint64(consensus.FromHash(&head.LastBlock)),
	}
	difficulty, sizeShift := consensus.NextTarget(timestamp.Unix(),
		parent.Timestamp.Unix(), consensus.Difficulty(parent.Difficulty),
		parent.CuckooSize)
	header.Difficulty = uint64(difficulty)
	header.CuckooSize = sizeShift

	return &wire.Block{Header: header}, nil
}

// solveBlock attempts to find a nonce whose Cuckoo graph contains a cycle
// attaining the template's difficulty.  The template is modified in place
// and is ready for submission when the function returns true.
//
// This function will return early with false when a quit signal arrives or
// when the periodic stale check finds the chain head has moved.
func (m *CPUMiner) solveBlock(block *wire.Block, quit chan struct{}) bool {
	header := &block.Header
	ticker := time.NewTicker(time.Second * staleCheckSecs)
	defer ticker.Stop()

	// Start from a random nonce so restarts do not retrace the same
	// graphs.
	offset := rand.Uint64()
	for i := uint64(0); ; i++ {
		select {
		case <-quit:
			return false

		case <-ticker.C:
			head, err := m.cfg.Chain.Head()
			if err == nil && head.LastBlock != header.PrevBlock {
				return false
			}

		default:
			// Non-blocking select to fall through
		}

		header.Nonce = offset + i
		powHash := header.PowHash()
		proof, ok := pow.Solve(&powHash, header.CuckooSize,
			m.cfg.ChainParams.ProofSize)
		if !ok {
			continue
		}
		if m.cfg.EasyPow || pow.ProofDifficulty(proof) >=
			consensus.Difficulty(header.Difficulty) {

			header.Proof = proof
			return true
		}
	}
}

// submitBlock submits the passed block to the chain after ensuring it is
// still building on the current head.
func (m *CPUMiner) submitBlock(block *wire.Block) bool {
	m.submitBlockLock.Lock()
	defer m.submitBlockLock.Unlock()

	// Process this block using the same rules as blocks coming from other
	// nodes.
	tip, err := m.cfg.Chain.ProcessBlock(block,
		chain.Options{EasyPow: m.cfg.EasyPow})
	if err != nil {
		// Anything other than a rule violation is an unexpected error,
		// so log that error as an internal error.
		var ruleErr chain.RuleError
		if !errors.As(err, &ruleErr) {
			log.Errorf("Unexpected error while processing block "+
				"submitted via CPU miner: %v", err)
			return false
		}

		log.Debugf("Block submitted via CPU miner rejected: %v", err)
		return false
	}

	log.Infof("Block submitted via CPU miner accepted (hash %v, "+
		"height %d)", tip.LastBlock, tip.Height)
	return true
}

// generateBlocks is a worker that builds block templates and attempts to
// solve them, detecting stale work and reacting accordingly by building a
// new template.  When a block is solved, it is submitted.
//
// It must be run as a goroutine.
func (m *CPUMiner) generateBlocks(quit chan struct{}) {
	log.Tracef("Starting generate blocks worker")
out:
	for {
		// Quit when the miner is stopped.
		select {
		case <-quit:
			break out
		default:
			// Non-blocking select to fall through
		}

		block, err := m.buildTemplate()
		if err != nil {
			log.Errorf("Failed to build a block template: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if m.solveBlock(block, quit) {
			m.submitBlock(block)
		}
	}

	m.wg.Done()
	log.Tracef("Generate blocks worker done")
}

// Start begins the CPU mining process.  Calling this function when the CPU
// miner has already been started will have no effect.
//
// This function is safe for concurrent access.
func (m *CPUMiner) Start() {
	m.Lock()
	defer m.Unlock()

	// Nothing to do if the miner is already running or if running in
	// discrete mode (using GenerateNBlocks).
	if m.started || m.discreteMining {
		return
	}
	if m.cfg.ChainParams.CuckooSize > pow.MaxSolveSizeShift {
		log.Errorf("CPU mining is not supported on %s: graph size %d "+
			"exceeds the reference solver limit of %d",
			m.cfg.ChainParams.Name, m.cfg.ChainParams.CuckooSize,
			pow.MaxSolveSizeShift)
		return
	}

	m.quit = make(chan struct{})
	m.wg.Add(1)
	go m.generateBlocks(m.quit)

	m.started = true
	log.Infof("CPU miner started")
}

// Stop gracefully stops the mining process by signalling all workers.
// Calling this function when the CPU miner has not already been started will
// have no effect.
//
// This function is safe for concurrent access.
func (m *CPUMiner) Stop() {
	m.Lock()
	defer m.Unlock()

	// Nothing to do if the miner is not currently running or if running
	// in discrete mode (using GenerateNBlocks).
	if !m.started || m.discreteMining {
		return
	}

	close(m.quit)
	m.wg.Wait()
	m.started = false
	log.Infof("CPU miner stopped")
}

// IsMining returns whether or not the CPU miner has been started and is
// therefore currently mining.
//
// This function is safe for concurrent access.
func (m *CPUMiner) IsMining() bool {
	m.Lock()
	defer m.Unlock()

	return m.started
}

// GenerateNBlocks generates the requested number of blocks in discrete
// mode.  It is an error to call this function while the miner is running in
// continuous mode.
//
// This function is safe for concurrent access.
func (m *CPUMiner) GenerateNBlocks(n uint32) ([]*chainhash.Hash, error) {
	m.Lock()

	if m.started || m.discreteMining {
		m.Unlock()
		return nil, errors.New("server is already CPU mining, call " +
			"Stop before calling GenerateNBlocks")
	}
	if m.cfg.ChainParams.CuckooSize > pow.MaxSolveSizeShift {
		m.Unlock()
		return nil, fmt.Errorf("the %s graph size %d exceeds what "+
			"the reference solver can mine",
			m.cfg.ChainParams.Name, m.cfg.ChainParams.CuckooSize)
	}

	m.quit = make(chan struct{})
	m.discreteMining = true
	m.Unlock()

	log.Tracef("Generating %d blocks", n)

	blockHashes := make([]*chainhash.Hash, 0, n)
	for uint32(len(blockHashes)) < n {
		block, err := m.buildTemplate()
		if err != nil {
			m.Lock()
			m.discreteMining = false
			m.Unlock()
			return nil, err
		}

		if m.solveBlock(block, m.quit) && m.submitBlock(block) {
			blockHash := block.Header.BlockHash()
			blockHashes = append(blockHashes, &blockHash)
		}
	}

	m.Lock()
	m.discreteMining = false
	m.Unlock()

	log.Tracef("Generated %d blocks", n)
	return blockHashes, nil
}
