// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/kukanet/kukad/consensus"
	"github.com/kukanet/kukad/wire"
)

// ProofDifficulty computes the difficulty a proof attains, measured on the
// hash of the serialized cycle nonces.
func ProofDifficulty(proof []uint32) consensus.Difficulty {
	var buf bytes.Buffer
	for _, nonce := range proof {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], nonce)
		buf.Write(b[:])
	}
	hash := chainhash.DoubleHashH(buf.Bytes())
	return consensus.FromHash(&hash)
}

// Verify checks a block header's proof of work in full: the proof must be a
// valid cycle of proofSize edges in the graph sized by the header's own size
// shift, and the difficulty the proof attains must cover the difficulty the
// header claims.
func Verify(header *wire.BlockHeader, proofSize int) bool {
	powHash := header.PowHash()
	if !verifyCycle(&powHash, header.CuckooSize, proofSize, header.Proof) {
		return false
	}
	return ProofDifficulty(header.Proof) >=
		consensus.Difficulty(header.Difficulty)
}

// VerifySize checks only that the header's proof is a valid cycle of
// proofSize edges in a graph of the given size shift, ignoring both the
// header's own size shift and its claimed difficulty.  It exists to make
// non-production testing tractable and must never be used to validate blocks
// on a live network.
func VerifySize(header *wire.BlockHeader, proofSize int, sizeShift uint8) bool {
	powHash := header.PowHash()
	return verifyCycle(&powHash, sizeShift, proofSize, header.Proof)
}
