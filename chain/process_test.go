// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/kukanet/kukad/chaincfg"
	"github.com/kukanet/kukad/consensus"
	"github.com/kukanet/kukad/pow"
	"github.com/kukanet/kukad/wire"
)

// spyStore is an in-memory ChainStore that records every mutating call so
// tests can assert exactly which side effects a pipeline run produced.
type spyStore struct {
	head    Tip
	headers map[chainhash.Hash]*wire.BlockHeader

	headErr      error
	headerErr    error
	saveBlockErr error
	saveHeadErr  error

	headerCalls int
	savedBlocks []*wire.Block
	savedHeads  []Tip

	events *[]string
}

func (s *spyStore) Head() (Tip, error) {
	if s.headErr != nil {
		return Tip{}, s.headErr
	}
	return s.head, nil
}

func (s *spyStore) GetBlockHeader(hash *chainhash.Hash) (*wire.BlockHeader, error) {
	s.headerCalls++
	if s.headerErr != nil {
		return nil, s.headerErr
	}
	header, ok := s.headers[*hash]
	if !ok {
		return nil, ErrNotFound
	}
	return header, nil
}

func (s *spyStore) SaveBlock(block *wire.Block) error {
	if s.saveBlockErr != nil {
		return s.saveBlockErr
	}
	s.savedBlocks = append(s.savedBlocks, block)
	*s.events = append(*s.events, "SaveBlock")
	return nil
}

func (s *spyStore) SaveHead(tip Tip) error {
	if s.saveHeadErr != nil {
		return s.saveHeadErr
	}
	s.savedHeads = append(s.savedHeads, tip)
	*s.events = append(*s.events, "SaveHead")
	return nil
}

// spyAdapter records acceptance notifications into the shared event log.
type spyAdapter struct {
	accepted []*wire.Block
	events   *[]string
}

func (a *spyAdapter) BlockAccepted(block *wire.Block) {
	a.accepted = append(a.accepted, block)
	*a.events = append(*a.events, "BlockAccepted")
}

// fakeTimeSource reports a fixed instant as the current time.
type fakeTimeSource struct {
	now time.Time
}

func (f *fakeTimeSource) AdjustedTime() time.Time {
	return f.now
}

// harness wires a Chain to spy collaborators over the simnet genesis block.
type harness struct {
	chain   *Chain
	store   *spyStore
	adapter *spyAdapter
	clock   *fakeTimeSource
	genesis *wire.BlockHeader
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	params := &chaincfg.SimNetParams
	genesis := &params.GenesisBlock.Header

	events := make([]string, 0, 4)
	store := &spyStore{
		head: NewTip(*params.GenesisHash),
		headers: map[chainhash.Hash]*wire.BlockHeader{
			*params.GenesisHash: genesis,
		},
		events: &events,
	}
	adapter := &spyAdapter{events: &events}
	clock := &fakeTimeSource{now: genesis.Timestamp.Add(time.Minute)}

	c, err := New(&Config{
		Store:       store,
		Adapter:     adapter,
		TimeSource:  clock,
		ChainParams: params,
	})
	require.NoError(t, err)

	return &harness{
		chain:   c,
		store:   store,
		adapter: adapter,
		clock:   clock,
		genesis: genesis,
	}
}

// events returns the mutating calls observed so far, in order.
func (h *harness) events() []string {
	return *h.store.events
}

// requireUntouched asserts no block was persisted, the head never moved, and
// no notification fired.
func (h *harness) requireUntouched(t *testing.T) {
	t.Helper()
	require.Empty(t, h.store.savedBlocks)
	require.Empty(t, h.store.savedHeads)
	require.Empty(t, h.adapter.accepted)
}

// requireCode asserts err is a RuleError with the given code.
func requireCode(t *testing.T, err error, code ErrorCode) RuleError {
	t.Helper()
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, code, ruleErr.ErrorCode, "got %v: %v",
		ruleErr.ErrorCode, err)
	return ruleErr
}

// candidate builds an unsolved block extending the given parent with
// consistent height, timestamps, and difficulty fields.
func candidate(parent *wire.BlockHeader) *wire.Block {
	parentHash := parent.BlockHash()
	header := wire.BlockHeader{
		Version:   1,
		Height:    parent.Height + 1,
		PrevBlock: parentHash,
		Timestamp: parent.Timestamp.Add(time.Minute),
		TotalDifficulty: parent.TotalDifficulty +
			uint64(consensus.FromHash(&parentHash)),
		CuckooSize: parent.CuckooSize,
	}
	wantDiff, wantSize := consensus.NextTarget(header.Timestamp.Unix(),
		parent.Timestamp.Unix(), consensus.Difficulty(parent.Difficulty),
		parent.CuckooSize)
	header.Difficulty = uint64(wantDiff)
	header.CuckooSize = wantSize
	return &wire.Block{Header: header}
}

// solveRelaxed finds a cycle for the header on the simnet relaxed graph.
// The proof is not required to attain the header's difficulty.
func solveRelaxed(t *testing.T, header *wire.BlockHeader) {
	t.Helper()

	params := &chaincfg.SimNetParams
	for nonce := uint64(0); nonce < 5000; nonce++ {
		header.Nonce = nonce
		powHash := header.PowHash()
		proof, ok := pow.Solve(&powHash, params.RelaxedPowSizeShift,
			params.ProofSize)
		if ok {
			header.Proof = proof
			return
		}
	}
	t.Fatal("no cycle found within the nonce budget")
}

// solveFull keeps solving until the proof also attains the header's claimed
// difficulty, as full verification demands.
func solveFull(t *testing.T, header *wire.BlockHeader) {
	t.Helper()

	params := &chaincfg.SimNetParams
	for nonce := uint64(0); nonce < 200000; nonce++ {
		header.Nonce = nonce
		powHash := header.PowHash()
		proof, ok := pow.Solve(&powHash, header.CuckooSize,
			params.ProofSize)
		if !ok {
			continue
		}
		if pow.ProofDifficulty(proof) >=
			consensus.Difficulty(header.Difficulty) {

			header.Proof = proof
			return
		}
	}
	t.Fatal("no difficulty-attaining cycle found within the nonce budget")
}

// TestProcessBlockAccepted exercises the full acceptance path: a solved
// block extending the head is persisted, notified, and becomes the new
// head, in that order.
func TestProcessBlockAccepted(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	solveFull(t, &block.Header)
	blockHash := block.Header.BlockHash()

	tip, err := h.chain.ProcessBlock(block, Options{})
	require.NoError(t, err)
	require.NotNil(t, tip)

	genesisHash := h.genesis.BlockHash()
	require.Equal(t, uint64(1), tip.Height)
	require.Equal(t, blockHash, tip.LastBlock)
	require.Equal(t, genesisHash, tip.PrevBlock)
	require.Equal(t, consensus.FromHash(&genesisHash), tip.TotalDifficulty)

	require.Len(t, h.store.savedBlocks, 1)
	require.Same(t, block, h.store.savedBlocks[0])
	require.Len(t, h.store.savedHeads, 1)
	require.Equal(t, *tip, h.store.savedHeads[0])
	require.Len(t, h.adapter.accepted, 1)
	require.Same(t, block, h.adapter.accepted[0])

	require.Equal(t, []string{"SaveBlock", "BlockAccepted", "SaveHead"},
		h.events())
}

// TestProcessBlockAcceptedRelaxed mines on the relaxed graph and accepts
// with EasyPow, which skips the difficulty attainment requirement.
func TestProcessBlockAcceptedRelaxed(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	solveRelaxed(t, &block.Header)

	tip, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	require.NoError(t, err)
	require.Equal(t, uint64(1), tip.Height)
}

// TestProcessBlockAlreadyKnown ensures blocks matching either of the head's
// hashes are rejected before any header validation runs.
func TestProcessBlockAlreadyKnown(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	blockHash := block.Header.BlockHash()

	// Head points directly at the candidate.
	h.store.head.LastBlock = blockHash
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	ruleErr := requireCode(t, err, ErrUnfit)
	require.Contains(t, ruleErr.Description, "already known")
	require.Zero(t, h.store.headerCalls)
	h.requireUntouched(t)

	// Head is one block past the candidate.
	h.store.head = NewTip(*chaincfg.SimNetParams.GenesisHash)
	h.store.head.PrevBlock = blockHash
	_, err = h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrUnfit)
	require.Zero(t, h.store.headerCalls)
	h.requireUntouched(t)
}

// TestProcessBlockOrphan ensures blocks attaching beyond the frontier are
// rejected without buffering.
func TestProcessBlockOrphan(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	block.Header.Height = h.store.head.Height + 2

	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	ruleErr := requireCode(t, err, ErrUnfit)
	require.Contains(t, ruleErr.Description, "orphan")
	h.requireUntouched(t)
}

// TestProcessBlockUnknownParent ensures a parent the store has never seen
// surfaces as a store error.
func TestProcessBlockUnknownParent(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	block.Header.PrevBlock = chainhash.Hash{0xde, 0xad}

	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrStore)
	require.True(t, errors.Is(err, ErrNotFound))
	h.requireUntouched(t)
}

// TestProcessBlockTimestamps covers both timestamp rules: strict progression
// past the parent and the bound on how far into the future a block may
// claim.
func TestProcessBlockTimestamps(t *testing.T) {
	h := newHarness(t)

	// Equal to the parent timestamp.
	block := candidate(h.genesis)
	block.Header.Timestamp = h.genesis.Timestamp
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrInvalidBlockTime)
	h.requireUntouched(t)

	// Earlier than the parent timestamp.
	block = candidate(h.genesis)
	block.Header.Timestamp = h.genesis.Timestamp.Add(-time.Second)
	_, err = h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrInvalidBlockTime)

	// Just past the future bound of now + 12 block intervals.
	block = candidate(h.genesis)
	block.Header.Timestamp = h.clock.now.Add(12*time.Minute + time.Second)
	_, err = h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrInvalidBlockTime)

	// Exactly at the bound is still acceptable as far as the time rules
	// are concerned; the proof is garbage so rejection moves on to the
	// proof of work.
	block = candidate(h.genesis)
	block.Header.Timestamp = h.clock.now.Add(12 * time.Minute)
	block.Header.TotalDifficulty = h.genesis.TotalDifficulty +
		uint64(consensus.FromHash(&block.Header.PrevBlock))
	_, err = h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrInvalidPow)
}

// TestProcessBlockWrongTotalDifficulty ensures the claimed cumulative
// difficulty must match the parent's total extended by the parent's hash.
func TestProcessBlockWrongTotalDifficulty(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	block.Header.TotalDifficulty++

	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrWrongTotalDifficulty)
	h.requireUntouched(t)
}

// TestProcessBlockDifficultyTooLow ensures a claimed difficulty below the
// retarget schedule is rejected.
func TestProcessBlockDifficultyTooLow(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	block.Header.Difficulty--

	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrDifficultyTooLow)
	h.requireUntouched(t)
}

// TestProcessBlockWrongCuckooSize ensures the graph size must match the
// retarget schedule in normal mode and is ignored in relaxed mode.
func TestProcessBlockWrongCuckooSize(t *testing.T) {
	h := newHarness(t)
	block := candidate(h.genesis)
	block.Header.CuckooSize++

	_, err := h.chain.ProcessBlock(block, Options{})
	requireCode(t, err, ErrWrongCuckooSize)
	h.requireUntouched(t)

	// Relaxed mode skips the size match and verifies on the relaxed
	// graph, so the same header with a mined proof is accepted.
	solveRelaxed(t, &block.Header)
	tip, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	require.NoError(t, err)
	require.Equal(t, uint64(1), tip.Height)
}

// TestProcessBlockInvalidPow covers garbage proofs in both modes.
func TestProcessBlockInvalidPow(t *testing.T) {
	h := newHarness(t)

	block := candidate(h.genesis)
	block.Header.Proof = []uint32{1, 2, 3, 4}
	_, err := h.chain.ProcessBlock(block, Options{})
	requireCode(t, err, ErrInvalidPow)
	h.requireUntouched(t)

	_, err = h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrInvalidPow)
	h.requireUntouched(t)
}

// TestProcessBlockDoesNotExtendHead ensures a block with a known parent that
// is not the current head is rejected without creating a branch.
func TestProcessBlockDoesNotExtendHead(t *testing.T) {
	h := newHarness(t)

	// Move the head one block past genesis without storing the block the
	// head names, so a genesis child still finds its parent header but no
	// longer extends the head.
	otherHash := chainhash.Hash{0x0f}
	h.store.head = Tip{
		Height:    1,
		LastBlock: otherHash,
		PrevBlock: chainhash.Hash{0x0e},
	}

	block := candidate(h.genesis)
	solveRelaxed(t, &block.Header)
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	ruleErr := requireCode(t, err, ErrUnfit)
	require.Contains(t, ruleErr.Description, "does not extend")
	h.requireUntouched(t)
}

// TestProcessBlockInvalidBody ensures a body that fails commitment
// verification rejects with the cryptographic cause attached.
func TestProcessBlockInvalidBody(t *testing.T) {
	h := newHarness(t)

	block := candidate(h.genesis)
	solveRelaxed(t, &block.Header)

	// A lone output commitment cannot balance against an empty kernel
	// set.
	keyBytes := [32]byte{31: 0x01}
	priv, _ := btcec.PrivKeyFromBytes(keyBytes[:])
	var commit wire.Commitment
	copy(commit[:], priv.PubKey().SerializeCompressed())
	block.Outputs = append(block.Outputs, commit)

	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	ruleErr := requireCode(t, err, ErrInvalidBlockProof)
	require.Error(t, ruleErr.Err)
	h.requireUntouched(t)
}

// TestProcessBlockHeadReadFailure ensures a failing head read aborts
// immediately with a store error.
func TestProcessBlockHeadReadFailure(t *testing.T) {
	h := newHarness(t)
	h.store.headErr = errors.New("leveldb: closed")

	block := candidate(h.genesis)
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrStore)
	require.True(t, errors.Is(err, h.store.headErr))
	h.requireUntouched(t)
}

// TestProcessBlockSaveBlockFailure ensures a persistence failure while
// saving the block is fatal: no notification fires and the head does not
// move.
func TestProcessBlockSaveBlockFailure(t *testing.T) {
	h := newHarness(t)
	h.store.saveBlockErr = errors.New("disk full")

	block := candidate(h.genesis)
	solveRelaxed(t, &block.Header)
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrStore)
	require.True(t, errors.Is(err, h.store.saveBlockErr))

	require.Empty(t, h.adapter.accepted)
	require.Empty(t, h.store.savedHeads)
}

// TestProcessBlockSaveHeadFailure ensures a failing head write surfaces as a
// store error after the block itself was persisted and notified.
func TestProcessBlockSaveHeadFailure(t *testing.T) {
	h := newHarness(t)
	h.store.saveHeadErr = errors.New("disk full")

	block := candidate(h.genesis)
	solveRelaxed(t, &block.Header)
	_, err := h.chain.ProcessBlock(block, Options{EasyPow: true})
	requireCode(t, err, ErrStore)
	require.True(t, errors.Is(err, h.store.saveHeadErr))

	require.Len(t, h.store.savedBlocks, 1)
	require.Len(t, h.adapter.accepted, 1)
	require.Empty(t, h.store.savedHeads)
}

// TestProcessBlockSequence accepts two blocks in a row and verifies the
// head, height, and total difficulty track the chain.
func TestProcessBlockSequence(t *testing.T) {
	h := newHarness(t)

	first := candidate(h.genesis)
	solveRelaxed(t, &first.Header)
	tip1, err := h.chain.ProcessBlock(first, Options{EasyPow: true})
	require.NoError(t, err)

	// The spy store does not learn new headers from SaveBlock on its own,
	// so teach it the accepted block and advance its head.
	firstHash := first.Header.BlockHash()
	h.store.headers[firstHash] = &first.Header
	h.store.head = *tip1
	h.clock.now = first.Header.Timestamp.Add(time.Minute)

	second := candidate(&first.Header)
	solveRelaxed(t, &second.Header)
	tip2, err := h.chain.ProcessBlock(second, Options{EasyPow: true})
	require.NoError(t, err)

	require.Equal(t, uint64(2), tip2.Height)
	require.Equal(t, second.Header.BlockHash(), tip2.LastBlock)
	require.Equal(t, firstHash, tip2.PrevBlock)
	require.Equal(t, tip1.TotalDifficulty+consensus.FromHash(&firstHash),
		tip2.TotalDifficulty)
}

// TestNewConfigValidation ensures the required collaborators are enforced.
func TestNewConfigValidation(t *testing.T) {
	_, err := New(&Config{ChainParams: &chaincfg.SimNetParams})
	require.Error(t, err)

	events := make([]string, 0)
	_, err = New(&Config{Store: &spyStore{events: &events}})
	require.Error(t, err)
}
