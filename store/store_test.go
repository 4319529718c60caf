// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/kukanet/kukad/chain"
	"github.com/kukanet/kukad/chaincfg"
	"github.com/kukanet/kukad/consensus"
	"github.com/kukanet/kukad/wire"
)

// newTestStore returns an in-memory store initialized with the simnet
// genesis block.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	require.NoError(t, s.Init(chaincfg.SimNetParams.GenesisBlock))
	return s
}

// testBlock returns a block extending the simnet genesis block.  The proof
// is arbitrary since the store does not validate.
func testBlock() *wire.Block {
	genesis := &chaincfg.SimNetParams.GenesisBlock.Header
	return &wire.Block{
		Header: wire.BlockHeader{
			Version:         1,
			Height:          1,
			PrevBlock:       genesis.BlockHash(),
			Timestamp:       genesis.Timestamp.Add(time.Minute),
			Difficulty:      10,
			TotalDifficulty: 42,
			CuckooSize:      8,
			Nonce:           7,
			Proof:           []uint32{5, 21, 100, 233},
		},
	}
}

// TestStoreInit ensures initialization stores the genesis block, points the
// head at it, and does nothing when run again.
func TestStoreInit(t *testing.T) {
	s := newTestStore(t)
	genesisHash := *chaincfg.SimNetParams.GenesisHash

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, chain.NewTip(genesisHash), head)

	header, err := s.GetBlockHeader(&genesisHash)
	require.NoError(t, err)
	require.Equal(t, genesisHash, header.BlockHash())

	// Save a head past genesis, then re-run Init: the head must survive.
	tip := head.Append(chainhash.Hash{0x01})
	require.NoError(t, s.SaveHead(tip))
	require.NoError(t, s.Init(chaincfg.SimNetParams.GenesisBlock))

	head, err = s.Head()
	require.NoError(t, err)
	require.Equal(t, tip, head)
}

// TestStoreHeadNotFound ensures an uninitialized database reports
// chain.ErrNotFound for its head.
func TestStoreHeadNotFound(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Head()
	require.ErrorIs(t, err, chain.ErrNotFound)
}

// TestStoreSaveBlockRoundTrip ensures a stored block and header come back
// intact under the header's hash.
func TestStoreSaveBlockRoundTrip(t *testing.T) {
	s := newTestStore(t)

	block := testBlock()
	require.NoError(t, s.SaveBlock(block))
	blockHash := block.Header.BlockHash()

	header, err := s.GetBlockHeader(&blockHash)
	require.NoError(t, err)
	require.Equal(t, blockHash, header.BlockHash())
	require.Equal(t, block.Header.Proof, header.Proof)
	require.Equal(t, block.Header.Timestamp.Unix(), header.Timestamp.Unix())

	stored, err := s.GetBlock(&blockHash)
	require.NoError(t, err)
	require.Equal(t, blockHash, stored.Header.BlockHash())
}

// TestStoreMissingRecords ensures lookups for unknown hashes report
// chain.ErrNotFound rather than a generic failure.
func TestStoreMissingRecords(t *testing.T) {
	s := newTestStore(t)
	unknown := chainhash.Hash{0xde, 0xad, 0xbe, 0xef}

	_, err := s.GetBlockHeader(&unknown)
	require.ErrorIs(t, err, chain.ErrNotFound)

	_, err = s.GetBlock(&unknown)
	require.ErrorIs(t, err, chain.ErrNotFound)
}

// TestStoreSaveHeadRoundTrip ensures the head record survives
// serialization.
func TestStoreSaveHeadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	tip := chain.Tip{
		Height:          1234,
		LastBlock:       chainhash.Hash{0xaa, 0xbb},
		PrevBlock:       chainhash.Hash{0xcc, 0xdd},
		TotalDifficulty: consensus.Difficulty(987654321),
	}
	require.NoError(t, s.SaveHead(tip))

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, tip, head)
}

// TestTipSerialization exercises the head codec directly, including the
// corrupt-length path.
func TestTipSerialization(t *testing.T) {
	tip := chain.Tip{
		Height:          7,
		LastBlock:       chainhash.Hash{0x01},
		PrevBlock:       chainhash.Hash{0x02},
		TotalDifficulty: 99,
	}

	data := serializeTip(tip)
	require.Len(t, data, tipSerializedLen)

	got, err := deserializeTip(data)
	require.NoError(t, err)
	require.Equal(t, tip, got)

	_, err = deserializeTip(data[:tipSerializedLen-1])
	require.Error(t, err)
}
