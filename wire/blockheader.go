// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxProofLen is the maximum number of cycle nonces a serialized proof of
// work is allowed to carry.  The consensus proof size of every supported
// network is far below this; the limit only bounds allocations when
// deserializing untrusted data.
const MaxProofLen = 256

// maxBlockHeaderPayload is an estimate of the number of bytes a block header
// with a typical proof occupies.  It is used to size serialization buffers.
// Version 4 bytes + Height 8 bytes + PrevBlock 32 bytes + Timestamp 8 bytes +
// Difficulty 8 bytes + TotalDifficulty 8 bytes + CuckooSize 1 byte + Nonce 8
// bytes + proof count 1 byte + 42 cycle nonces of 4 bytes.
const maxBlockHeaderPayload = 78 + 42*4

// BlockHeader defines information about a block and is used in the kukad
// block (Block) message as well as for long-term storage.
type BlockHeader struct {
	// Version of the block.  This is not the same as the protocol version.
	Version int32

	// Height is the block height in the block chain.
	Height uint64

	// Hash of the previous block in the block chain.
	PrevBlock chainhash.Hash

	// Time the block was created.  Encoded as int64 unix seconds on the
	// wire, so the consensus precision is one second.
	Timestamp time.Time

	// Difficulty target claimed for this block.
	Difficulty uint64

	// TotalDifficulty is the claimed cumulative difficulty of the chain up
	// to and including this block.
	TotalDifficulty uint64

	// CuckooSize is the size shift of the Cuckoo Cycle graph the proof was
	// found in.
	CuckooSize uint8

	// Nonce distinguishes the graphs a solver attempts.
	Nonce uint64

	// Proof is the Cuckoo Cycle solution, a set of ascending edge nonces.
	Proof []uint32
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	// Encode the header and double sha256 everything.  Ignore the error
	// returns since there is no way the encode could fail except being out
	// of memory which would cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, maxBlockHeaderPayload))
	_ = writeBlockHeader(buf, h)

	return chainhash.DoubleHashH(buf.Bytes())
}

// PowHash computes the hash that keys the Cuckoo Cycle graph for this header.
// It covers every header field except the proof itself, since the proof is the
// solution being searched for.
func (h *BlockHeader) PowHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, maxBlockHeaderPayload))
	_ = writeBlockHeaderNoProof(buf, h)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize encodes a block header from h into w using a format that is
// suitable for long-term storage such as a database.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// Deserialize decodes a block header from r into the receiver using a format
// that is suitable for long-term storage such as a database.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Bytes returns the serialized block header.
func (h *BlockHeader) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := h.Serialize(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes deserializes a block header byte slice.
func (h *BlockHeader) FromBytes(b []byte) error {
	return h.Deserialize(bytes.NewReader(b))
}

// writeBlockHeaderNoProof writes every header field except the proof to w.
func writeBlockHeaderNoProof(w io.Writer, bh *BlockHeader) error {
	sec := bh.Timestamp.Unix()
	return writeElements(w, bh.Version, bh.Height, &bh.PrevBlock, sec,
		bh.Difficulty, bh.TotalDifficulty, bh.CuckooSize, bh.Nonce)
}

// writeBlockHeader writes a kukad block header to w.
func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	err := writeBlockHeaderNoProof(w, bh)
	if err != nil {
		return err
	}
	err = writeVarInt(w, uint64(len(bh.Proof)))
	if err != nil {
		return err
	}
	for _, nonce := range bh.Proof {
		err = writeElement(w, nonce)
		if err != nil {
			return err
		}
	}
	return nil
}

// readBlockHeader reads a kukad block header from r.
func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	var sec int64
	err := readElements(r, &bh.Version, &bh.Height, &bh.PrevBlock, &sec,
		&bh.Difficulty, &bh.TotalDifficulty, &bh.CuckooSize, &bh.Nonce)
	if err != nil {
		return err
	}
	bh.Timestamp = time.Unix(sec, 0)

	count, err := readVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxProofLen {
		return messageError("readBlockHeader", "proof length too long")
	}
	bh.Proof = make([]uint32, count)
	for i := uint64(0); i < count; i++ {
		err = readElement(r, &bh.Proof[i])
		if err != nil {
			return err
		}
	}
	return nil
}
