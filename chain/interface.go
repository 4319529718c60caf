// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/wire"
)

// ErrNotFound is returned by ChainStore implementations when the requested
// tip or header does not exist.
var ErrNotFound = errors.New("chain store: not found")

// ChainStore provides the persistence the chain needs to process blocks.
// Implementations must return ErrNotFound (possibly wrapped) from Head and
// GetBlockHeader when the requested data does not exist so callers can tell
// absence apart from failure.
type ChainStore interface {
	// Head returns the current chain tip.
	Head() (Tip, error)

	// GetBlockHeader returns the header with the given hash.
	GetBlockHeader(hash *chainhash.Hash) (*wire.BlockHeader, error)

	// SaveBlock persists the block and its header, keyed by the header
	// hash.
	SaveBlock(block *wire.Block) error

	// SaveHead persists the given tip as the new chain head.
	SaveHead(tip Tip) error
}

// ChainAdapter is notified of blocks the chain accepts.  Callbacks fire
// while the chain still holds its processing lock, so implementations must
// not call back into the chain and should hand any heavy work off to
// another goroutine.
type ChainAdapter interface {
	// BlockAccepted is invoked after a block has been fully validated and
	// persisted, before the head moves.
	BlockAccepted(block *wire.Block)
}

// NoopAdapter is a ChainAdapter that ignores all notifications.
type NoopAdapter struct{}

// BlockAccepted is a no-op.
func (NoopAdapter) BlockAccepted(*wire.Block) {}
