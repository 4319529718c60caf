// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain implements the block acceptance pipeline.  Candidate blocks
// received from the network are run through an ordered sequence of checks,
// cheapest first, and on success are persisted and become the new chain
// head.  The chain tracks a single branch: a candidate that does not extend
// the current head directly is rejected.
package chain

import (
	"fmt"
	"sync"
	"time"

	"github.com/kukanet/kukad/chaincfg"
)

// Config describes the collaborators and parameters a Chain needs.
type Config struct {
	// Store provides access to persisted blocks and the head pointer.
	// This field is required.
	Store ChainStore

	// Adapter receives acceptance notifications.  If nil, notifications
	// are discarded.
	Adapter ChainAdapter

	// TimeSource supplies the current time for the future timestamp
	// bound.  If nil, the local system clock is used.
	TimeSource TimeSource

	// ChainParams identifies the network the chain validates for.  This
	// field is required.
	ChainParams *chaincfg.Params
}

// Chain processes candidate blocks against the stored chain state.  All of
// its methods are safe for concurrent access.
type Chain struct {
	store      ChainStore
	adapter    ChainAdapter
	timeSource TimeSource
	params     *chaincfg.Params

	// processLock serializes block processing.  It is held from the head
	// read through the head write so two concurrent candidates cannot
	// both extend the same observed head.
	processLock sync.Mutex
}

// New constructs a Chain from the given configuration.
func New(config *Config) (*Chain, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("chain.New: store is required")
	}
	if config.ChainParams == nil {
		return nil, fmt.Errorf("chain.New: chain parameters are required")
	}

	adapter := config.Adapter
	if adapter == nil {
		adapter = NoopAdapter{}
	}
	timeSource := config.TimeSource
	if timeSource == nil {
		timeSource = NewSystemTimeSource()
	}

	return &Chain{
		store:      config.Store,
		adapter:    adapter,
		timeSource: timeSource,
		params:     config.ChainParams,
	}, nil
}

// Head returns the current chain tip.
func (c *Chain) Head() (Tip, error) {
	return c.store.Head()
}

// maxFutureOffset returns how far past the current time a header timestamp
// may reach before it is rejected.
func (c *Chain) maxFutureOffset() time.Duration {
	return 12 * c.params.TargetTimePerBlock
}
