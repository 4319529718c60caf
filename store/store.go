// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store implements the persistent chain state on top of a leveldb
// key-value database.  It holds three kinds of records: block headers and
// full blocks, each keyed by block hash under distinct prefixes, and a
// single record for the current chain head.
package store

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/kukanet/kukad/chain"
	"github.com/kukanet/kukad/wire"
)

var (
	// headerKeyPrefix prefixes header records, keyed by block hash.
	headerKeyPrefix = []byte("h")

	// blockKeyPrefix prefixes full block records, keyed by block hash.
	blockKeyPrefix = []byte("b")

	// headKey is the key of the single chain head record.
	headKey = []byte("head")
)

// Store is a chain state accessor backed by a leveldb database.  It
// implements chain.ChainStore.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the chain database at the given path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	log.Infof("Chain database opened at %s", path)
	return &Store{db: db}, nil
}

// OpenMemory opens an ephemeral in-memory chain database, useful for tests
// and simulation runs that should not leave state behind.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("store: open memory: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init ensures the database contains the given genesis block and a head
// pointing at it.  It is a no-op on a database that already has a head, so
// it is safe to call on every startup.
func (s *Store) Init(genesis *wire.Block) error {
	_, err := s.Head()
	if err == nil {
		return nil
	}
	if err != chain.ErrNotFound {
		return err
	}

	genesisHash := genesis.Header.BlockHash()
	log.Infof("Initializing chain database with genesis block %v",
		genesisHash)

	if err := s.SaveBlock(genesis); err != nil {
		return err
	}
	return s.SaveHead(chain.NewTip(genesisHash))
}

// Head returns the current chain tip, or chain.ErrNotFound if the database
// has not been initialized.
func (s *Store) Head() (chain.Tip, error) {
	data, err := s.db.Get(headKey, nil)
	if err == leveldb.ErrNotFound {
		return chain.Tip{}, chain.ErrNotFound
	}
	if err != nil {
		return chain.Tip{}, fmt.Errorf("store: read head: %w", err)
	}
	return deserializeTip(data)
}

// GetBlockHeader returns the header with the given hash, or
// chain.ErrNotFound if no such header has been stored.
func (s *Store) GetBlockHeader(hash *chainhash.Hash) (*wire.BlockHeader, error) {
	data, err := s.db.Get(headerKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, chain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read header %v: %w", hash, err)
	}

	var header wire.BlockHeader
	if err := header.FromBytes(data); err != nil {
		return nil, fmt.Errorf("store: corrupt header %v: %w", hash, err)
	}
	return &header, nil
}

// GetBlock returns the full block with the given hash, or chain.ErrNotFound
// if no such block has been stored.
func (s *Store) GetBlock(hash *chainhash.Hash) (*wire.Block, error) {
	data, err := s.db.Get(blockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, chain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read block %v: %w", hash, err)
	}

	var block wire.Block
	if err := block.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store: corrupt block %v: %w", hash, err)
	}
	return &block, nil
}

// SaveBlock persists the block and its header under the header's hash.  The
// two records are written in one batch so a header is never visible without
// its block.
func (s *Store) SaveBlock(block *wire.Block) error {
	blockHash := block.Header.BlockHash()

	headerBytes, err := block.Header.Bytes()
	if err != nil {
		return fmt.Errorf("store: serialize header %v: %w", blockHash, err)
	}
	var blockBuf bytes.Buffer
	if err := block.Serialize(&blockBuf); err != nil {
		return fmt.Errorf("store: serialize block %v: %w", blockHash, err)
	}

	batch := new(leveldb.Batch)
	batch.Put(headerKey(&blockHash), headerBytes)
	batch.Put(blockKey(&blockHash), blockBuf.Bytes())
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: write block %v: %w", blockHash, err)
	}

	log.Debugf("Stored block %v at height %d", blockHash,
		block.Header.Height)
	return nil
}

// SaveHead persists the given tip as the current chain head.
func (s *Store) SaveHead(tip chain.Tip) error {
	if err := s.db.Put(headKey, serializeTip(tip), nil); err != nil {
		return fmt.Errorf("store: write head: %w", err)
	}
	log.Debugf("Chain head now %v at height %d", tip.LastBlock, tip.Height)
	return nil
}

// headerKey returns the database key of the header record for a hash.
func headerKey(hash *chainhash.Hash) []byte {
	return append(append([]byte{}, headerKeyPrefix...), hash[:]...)
}

// blockKey returns the database key of the block record for a hash.
func blockKey(hash *chainhash.Hash) []byte {
	return append(append([]byte{}, blockKeyPrefix...), hash[:]...)
}
